package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// Group collapses recurring occurrences of the same classification into
// EventGroups. Two consecutive occurrences belong to the same group when the
// next one starts less than threshold after the previous one ended
// (overlapping occurrences always join). The total duration is the exact sum
// of member durations, never the outer span. A single occurrence is a group
// of one.
func Group(intervals []model.Interval, threshold time.Duration) []model.EventGroup {
	type groupKey struct {
		source string
		class  string
	}

	byKey := make(map[groupKey][]model.Interval)
	for _, iv := range sortIntervals(intervals) {
		k := groupKey{source: iv.SourceClass, class: iv.Classification}
		byKey[k] = append(byKey[k], iv)
	}

	limit := threshold.Milliseconds()
	var groups []model.EventGroup
	for _, occurrences := range byKey {
		current := newGroup(occurrences[0])
		lastEnd := occurrences[0].End
		for _, iv := range occurrences[1:] {
			if iv.Start-lastEnd < limit {
				current = addOccurrence(current, iv)
			} else {
				groups = append(groups, current)
				current = newGroup(iv)
			}
			lastEnd = max(lastEnd, iv.End)
		}
		groups = append(groups, current)
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.TimeRange.Start != b.TimeRange.Start {
			return a.TimeRange.Start < b.TimeRange.Start
		}
		if a.SourceClass != b.SourceClass {
			return a.SourceClass < b.SourceClass
		}
		return a.Classification < b.Classification
	})
	return groups
}

func newGroup(iv model.Interval) model.EventGroup {
	return model.EventGroup{
		Classification:       iv.Classification,
		SourceClass:          iv.SourceClass,
		Occurrences:          []model.Interval{iv},
		TotalDurationSeconds: iv.DurationSeconds(),
		TimeRange:            model.TimeRange{Start: iv.Start, End: iv.End},
	}
}

func addOccurrence(g model.EventGroup, iv model.Interval) model.EventGroup {
	g.Occurrences = append(g.Occurrences, iv)
	var totalMs int64
	for _, o := range g.Occurrences {
		totalMs += o.DurationMs()
	}
	g.TotalDurationSeconds = float64(totalMs) / 1000
	g.TimeRange.End = max(g.TimeRange.End, iv.End)
	return g
}
