package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

var (
	ErrNonFiniteTimestamp  = errors.New("non-finite timestamp")
	ErrNegativeTimestamp   = errors.New("negative timestamp")
	ErrNonFiniteDuration   = errors.New("non-finite duration")
	ErrNegativeDuration    = errors.New("negative duration")
	ErrTimestampOutOfRange = errors.New("timestamp out of range")
	ErrDurationOutOfRange  = errors.New("duration out of range")
)

// maxTimestampMs is the last millisecond of year 9999 UTC. Anything later
// cannot be laid out on a calendar day.
var maxTimestampMs = time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC).UnixMilli()

func validateTimestamp(ts model.EpochMillis) error {
	if !ts.Finite() {
		return ErrNonFiniteTimestamp
	}
	if ts < 0 {
		return ErrNegativeTimestamp
	}
	if float64(ts) > float64(maxTimestampMs) {
		return ErrTimestampOutOfRange
	}
	return nil
}

// NormalizeMarker turns a raw manual marker into a marker with unknown end.
// index is the marker's authored position and breaks timestamp ties.
func NormalizeMarker(m model.RawManualMarker, index int) (model.Marker, error) {
	ref := model.OriginRef{Kind: model.SourceManual, ID: m.ID, Index: index}
	if err := validateTimestamp(m.Timestamp); err != nil {
		return model.Marker{}, fmt.Errorf("marker %d (%q): %w", index, m.Activity, err)
	}
	return model.Marker{
		Start:            m.Timestamp.Millis(),
		Activity:         m.Activity,
		ClassificationID: m.ClassificationID,
		OriginRef:        ref,
	}, nil
}

// NormalizePassive turns a raw tracker event into an Interval.
func NormalizePassive(ev model.RawPassiveEvent, index int) (model.Interval, error) {
	if err := validateTimestamp(ev.Timestamp); err != nil {
		return model.Interval{}, fmt.Errorf("event %d (%s): %w", index, ev.ID, err)
	}
	if math.IsNaN(ev.DurationSeconds) || math.IsInf(ev.DurationSeconds, 0) {
		return model.Interval{}, fmt.Errorf("event %d (%s): %w", index, ev.ID, ErrNonFiniteDuration)
	}
	if ev.DurationSeconds < 0 {
		return model.Interval{}, fmt.Errorf("event %d (%s): %w", index, ev.ID, ErrNegativeDuration)
	}

	start := ev.Timestamp.Millis()
	if ev.DurationSeconds*1000 > float64(maxTimestampMs-start) {
		return model.Interval{}, fmt.Errorf("event %d (%s): %w", index, ev.ID, ErrDurationOutOfRange)
	}
	return model.Interval{
		Start:          start,
		End:            start + int64(math.Round(ev.DurationSeconds*1000)),
		Classification: passiveClassification(ev),
		SourceKind:     model.SourcePassive,
		SourceClass:    ev.SourceClassification,
		Color:          ev.Color,
		OriginRef:      model.OriginRef{Kind: model.SourcePassive, ID: ev.ID, Index: index},
	}, nil
}

// passiveClassification picks the label blocks and groups are keyed by.
func passiveClassification(ev model.RawPassiveEvent) string {
	if ev.DisplayName != "" {
		return ev.DisplayName
	}
	if app := ev.PayloadString("app"); app != "" {
		return app
	}
	if status := ev.PayloadString("status"); status != "" {
		return status
	}
	if title := ev.PayloadString("title"); title != "" {
		return title
	}
	return ev.SourceClassification
}

// NormalizeMarkers normalizes a batch, dropping and reporting malformed records.
func NormalizeMarkers(raw []model.RawManualMarker) ([]model.Marker, []model.Diagnostic) {
	markers := make([]model.Marker, 0, len(raw))
	var diags []model.Diagnostic
	for i, m := range raw {
		marker, err := NormalizeMarker(m, i)
		if err != nil {
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagMalformedMarker,
				Ref:     model.OriginRef{Kind: model.SourceManual, ID: m.ID, Index: i},
				Message: err.Error(),
			})
			continue
		}
		markers = append(markers, marker)
	}
	return markers, diags
}

// NormalizeEvents normalizes a batch, dropping and reporting malformed
// records. Events from hidden buckets are skipped before normalization;
// that is filtering, not an error.
func NormalizeEvents(raw []model.RawPassiveEvent, buckets []model.Bucket) ([]model.Interval, []model.Diagnostic) {
	hidden := HiddenSources(buckets)
	intervals := make([]model.Interval, 0, len(raw))
	var diags []model.Diagnostic
	for i, ev := range raw {
		if hidden[ev.SourceID] {
			continue
		}
		iv, err := NormalizePassive(ev, i)
		if err != nil {
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagMalformedEvent,
				Ref:     model.OriginRef{Kind: model.SourcePassive, ID: ev.ID, Index: i},
				Message: err.Error(),
			})
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals, diags
}

// HiddenSources returns the ids of buckets switched off by the user. Buckets
// that are unknown stay visible.
func HiddenSources(buckets []model.Bucket) map[string]bool {
	hidden := make(map[string]bool)
	for _, b := range buckets {
		if !b.IsVisible {
			hidden[b.ID] = true
		}
	}
	return hidden
}
