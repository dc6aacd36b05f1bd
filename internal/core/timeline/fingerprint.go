package timeline

import (
	"fmt"

	"github.com/penwyp/go-day-timeline/internal/util"
)

type fingerprintKey struct {
	Inputs                  Inputs   `json:"inputs"`
	DayKey                  string   `json:"dayKey"`
	Today                   string   `json:"today"`
	Location                string   `json:"location"`
	ShowManual              bool     `json:"showManual"`
	ShowPassive             bool     `json:"showPassive"`
	BlockWidthMs            int64    `json:"blockWidthMs"`
	GroupGapThresholdMs     int64    `json:"groupGapThresholdMs"`
	SlotSizeMs              int64    `json:"slotSizeMs"`
	PresenceSourceClass     string   `json:"presenceSourceClass"`
	InactiveClassifications []string `json:"inactiveClassifications"`
}

// Fingerprint hashes every input Prepare depends on. Two calls with equal
// fingerprints yield identical Prepared results, so it is the memo key for
// callers that re-render every tick.
func Fingerprint(inputs Inputs, opts Options, today string) (string, error) {
	if opts.Location == nil {
		return "", fmt.Errorf("%w: location is required", ErrInvalidOptions)
	}
	return util.ContentFingerprint(fingerprintKey{
		Inputs:                  inputs,
		DayKey:                  opts.DayKey,
		Today:                   today,
		Location:                opts.Location.String(),
		ShowManual:              opts.ShowManual,
		ShowPassive:             opts.ShowPassive,
		BlockWidthMs:            opts.BlockWidth.Milliseconds(),
		GroupGapThresholdMs:     opts.GroupGapThreshold.Milliseconds(),
		SlotSizeMs:              opts.SlotSize.Milliseconds(),
		PresenceSourceClass:     opts.PresenceSourceClass,
		InactiveClassifications: opts.InactiveClassifications,
	})
}
