package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// SortMarkers orders markers chronologically. Markers sharing a timestamp
// keep their authored order.
func SortMarkers(markers []model.Marker) []model.Marker {
	sorted := make([]model.Marker, len(markers))
	copy(sorted, markers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].OriginRef.Index < sorted[j].OriginRef.Index
	})
	return sorted
}

// InferDurations assigns an end to every marker from its successor:
//   - not the last marker: end = start of the next marker, whatever day it is on
//   - last marker on today: live, end tracks now (see ApplyNow)
//   - last marker on any other day: end = local end of that day
//
// today is the day key of "now". The live interval is returned with
// End == Start until ApplyNow patches it.
func InferDurations(markers []model.Marker, today string, loc *time.Location) []model.Interval {
	sorted := SortMarkers(markers)
	intervals := make([]model.Interval, 0, len(sorted))

	for i, m := range sorted {
		iv := model.Interval{
			Start:            m.Start,
			Classification:   m.Activity,
			ClassificationID: m.ClassificationID,
			SourceKind:       model.SourceManual,
			OriginRef:        m.OriginRef,
		}

		switch {
		case i < len(sorted)-1:
			iv.End = sorted[i+1].Start
		case DayKeyOf(m.Start, loc) == today:
			iv.End = m.Start
			iv.Live = true
		default:
			iv.End = NextMidnight(m.Start, loc)
		}

		intervals = append(intervals, iv)
	}

	return intervals
}

// ApplyNow sets the end of live intervals to now. A now earlier than the
// interval start (clock skew) yields a zero-length interval.
func ApplyNow(intervals []model.Interval, now int64) []model.Interval {
	patched := make([]model.Interval, len(intervals))
	copy(patched, intervals)
	for i := range patched {
		if patched[i].Live {
			patched[i].End = max(patched[i].Start, now)
		}
	}
	return patched
}
