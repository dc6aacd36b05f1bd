package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// DetectGaps returns the empty parts of [window.Start, visibleEnd) as
// slot-sized gaps on the window.Start + k*slot grid. It walks backward from
// the visible end one slot at a time and emits, for every slot, each part not
// covered by a placed range. Gaps never overlap placed ranges and are clamped
// to the window at both ends. Consecutive gaps are not merged: each one is an
// independent insertion target. The result is in ascending order.
func DetectGaps(placed []model.TimeRange, window model.DayWindow, visibleEnd int64, slot time.Duration) []model.Gap {
	s := slot.Milliseconds()
	end := min(window.End, visibleEnd)
	if s <= 0 || end <= window.Start {
		return nil
	}

	clipped := make([]model.TimeRange, 0, len(placed))
	for _, r := range placed {
		lo, hi := max(r.Start, window.Start), min(r.End, end)
		if hi > lo {
			clipped = append(clipped, model.TimeRange{Start: lo, End: hi})
		}
	}
	covered := unionRanges(clipped)

	var reversed []model.Gap
	for cursor := end; cursor > window.Start; {
		k := (cursor - 1 - window.Start) / s
		slotStart := window.Start + k*s
		free := uncovered(covered, slotStart, cursor)
		for i := len(free) - 1; i >= 0; i-- {
			reversed = append(reversed, free[i])
		}
		cursor = slotStart
	}

	gaps := make([]model.Gap, len(reversed))
	for i, g := range reversed {
		gaps[len(reversed)-1-i] = g
	}
	return gaps
}

// uncovered returns the parts of [start, end) not covered by the sorted,
// disjoint ranges.
func uncovered(covered []model.TimeRange, start, end int64) []model.Gap {
	var free []model.Gap
	cursor := start
	for _, r := range covered {
		if r.End <= cursor {
			continue
		}
		if r.Start >= end {
			break
		}
		if r.Start > cursor {
			free = append(free, model.Gap{Start: cursor, End: r.Start})
		}
		cursor = max(cursor, r.End)
		if cursor >= end {
			return free
		}
	}
	if cursor < end {
		free = append(free, model.Gap{Start: cursor, End: end})
	}
	return free
}

// unionRanges sorts and coalesces overlapping or touching ranges.
func unionRanges(ranges []model.TimeRange) []model.TimeRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]model.TimeRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []model.TimeRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// IntervalRanges converts intervals to their spans.
func IntervalRanges(intervals []model.Interval) []model.TimeRange {
	ranges := make([]model.TimeRange, 0, len(intervals))
	for _, iv := range intervals {
		ranges = append(ranges, model.TimeRange{Start: iv.Start, End: iv.End})
	}
	return ranges
}

// BlockRanges converts merged blocks to their spans.
func BlockRanges(blocks []model.MergedBlock) []model.TimeRange {
	ranges := make([]model.TimeRange, 0, len(blocks))
	for _, b := range blocks {
		ranges = append(ranges, model.TimeRange{Start: b.Start, End: b.End})
	}
	return ranges
}
