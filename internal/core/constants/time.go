package constants

import "time"

const (
	// Fixed-width chunking of passive data
	DefaultBlockWidth        = 30 * time.Minute
	DefaultBlockWidthMinutes = 30

	// Gap detector slot size
	DefaultSlotSize        = 15 * time.Minute
	DefaultSlotSizeMinutes = 15

	// Event grouping threshold; defaults to the block width
	DefaultGroupGapThreshold = DefaultBlockWidth

	// Live interval refresh granularity
	LiveTickInterval = 1 * time.Second

	// Day key layout (local calendar date)
	DayKeyLayout = "2006-01-02"

	// Upper bound for a multi-day schedule request
	MaxScheduleDays = 62
)
