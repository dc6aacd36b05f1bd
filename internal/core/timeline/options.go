package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/constants"
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

var ErrInvalidOptions = errors.New("invalid timeline options")

// Options is everything the pipeline depends on besides the raw records and
// "now". Nothing is read from ambient state.
type Options struct {
	DayKey            string
	Location          *time.Location
	ShowManual        bool
	ShowPassive       bool
	BlockWidth        time.Duration
	GroupGapThreshold time.Duration
	SlotSize          time.Duration

	// PresenceSourceClass is the bucket type of the status stream.
	PresenceSourceClass string
	// InactiveClassifications are content labels that only appear while the
	// user is away (e.g. the lock screen).
	InactiveClassifications []string
}

// DefaultOptions returns options for the given day with both tracks shown.
func DefaultOptions(dayKey string, loc *time.Location) Options {
	if loc == nil {
		loc = time.Local
	}
	return Options{
		DayKey:                  dayKey,
		Location:                loc,
		ShowManual:              true,
		ShowPassive:             true,
		BlockWidth:              constants.DefaultBlockWidth,
		GroupGapThreshold:       constants.DefaultGroupGapThreshold,
		SlotSize:                constants.DefaultSlotSize,
		PresenceSourceClass:     model.BucketTypePresence,
		InactiveClassifications: []string{"loginwindow"},
	}
}

// Validate checks the options before any work is done.
func (o Options) Validate() error {
	if o.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidOptions)
	}
	if _, err := ParseDayKey(o.DayKey, o.Location); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.BlockWidth < time.Minute {
		return fmt.Errorf("%w: block width %v is below one minute", ErrInvalidOptions, o.BlockWidth)
	}
	if o.SlotSize < time.Minute {
		return fmt.Errorf("%w: slot size %v is below one minute", ErrInvalidOptions, o.SlotSize)
	}
	if o.GroupGapThreshold < 0 {
		return fmt.Errorf("%w: negative group gap threshold %v", ErrInvalidOptions, o.GroupGapThreshold)
	}
	return nil
}

func (o Options) isInactiveClassification(class string) bool {
	for _, c := range o.InactiveClassifications {
		if c == class {
			return true
		}
	}
	return false
}

// Inputs are the raw records handed over by the storage layer.
type Inputs struct {
	Markers []model.RawManualMarker `json:"markers"`
	Events  []model.RawPassiveEvent `json:"events"`
	Buckets []model.Bucket          `json:"buckets"`
}
