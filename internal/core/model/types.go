package model

import (
	"fmt"
	"math"
	"time"

	"github.com/bytedance/sonic"
)

// EpochMillis is a wall-clock instant in milliseconds since the Unix epoch.
// It decodes from a JSON number or from an RFC3339 string.
type EpochMillis float64

func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	var n float64
	if err := sonic.Unmarshal(data, &n); err == nil {
		*e = EpochMillis(n)
		return nil
	}

	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		ts, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", str, err)
		}
		*e = EpochMillis(ts.UnixMilli())
		return nil
	}

	return fmt.Errorf("timestamp must be either epoch milliseconds or an RFC3339 string")
}

// Finite reports whether the value is a usable instant.
func (e EpochMillis) Finite() bool {
	f := float64(e)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Millis truncates to an integer millisecond instant.
func (e EpochMillis) Millis() int64 {
	return int64(math.Floor(float64(e)))
}

// RawManualMarker is an operator-entered "I started doing X at T" record.
type RawManualMarker struct {
	ID               string      `json:"id,omitempty"`
	Activity         string      `json:"activity"`
	Timestamp        EpochMillis `json:"date"`
	ClassificationID string      `json:"goalId,omitempty"`
}

// RawPassiveEvent is one event reported by the external activity tracker,
// already decoded from its export format.
type RawPassiveEvent struct {
	ID                   string         `json:"id"`
	SourceID             string         `json:"bucketId"`
	SourceClassification string         `json:"bucketType"`
	Timestamp            EpochMillis    `json:"timestamp"`
	DurationSeconds      float64        `json:"duration"`
	DisplayName          string         `json:"displayName,omitempty"`
	Payload              map[string]any `json:"eventData,omitempty"`
	Color                string         `json:"color,omitempty"`
}

// Bucket is tracker source metadata used for visibility filtering.
type Bucket struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	IsVisible bool   `json:"isVisible"`
}

// PayloadString returns a string payload field or "".
func (e RawPassiveEvent) PayloadString(key string) string {
	if e.Payload == nil {
		return ""
	}
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}
