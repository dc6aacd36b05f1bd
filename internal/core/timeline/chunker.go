package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// BlockTrack holds the blocks of one passive source classification.
type BlockTrack struct {
	SourceClass string
	Blocks      []model.TimeBlock
}

// Chunk buckets intervals into blocks aligned to window.Start + k*width.
// A block holds every interval that overlaps it at all; member boundaries
// are never truncated. Empty blocks are omitted and the last block of the
// day may be shorter than width.
func Chunk(intervals []model.Interval, window model.DayWindow, width time.Duration) []model.TimeBlock {
	w := width.Milliseconds()
	if w <= 0 || len(intervals) == 0 {
		return nil
	}

	sorted := sortIntervals(intervals)
	members := make(map[int64][]model.Interval)

	for _, iv := range sorted {
		lo := max(iv.Start, window.Start)
		hi := min(iv.End, window.End)
		if iv.End == iv.Start && window.Contains(iv.Start) {
			// zero-length events still mark the block they sit in
			hi = lo + 1
		}
		if hi <= lo {
			continue
		}
		first := (lo - window.Start) / w
		last := (hi - 1 - window.Start) / w
		for k := first; k <= last; k++ {
			members[k] = append(members[k], iv)
		}
	}

	keys := make([]int64, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	sourceClass := ""
	if len(sorted) > 0 {
		sourceClass = sorted[0].SourceClass
	}

	blocks := make([]model.TimeBlock, 0, len(keys))
	for _, k := range keys {
		start := window.Start + k*w
		blocks = append(blocks, model.TimeBlock{
			BlockStart:  start,
			BlockEnd:    min(start+w, window.End),
			SourceClass: sourceClass,
			Members:     members[k],
		})
	}
	return blocks
}

// ChunkBySource chunks each source classification separately. Tracks are
// sorted by source classification.
func ChunkBySource(intervals []model.Interval, window model.DayWindow, width time.Duration) []BlockTrack {
	bySource := make(map[string][]model.Interval)
	for _, iv := range intervals {
		bySource[iv.SourceClass] = append(bySource[iv.SourceClass], iv)
	}

	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	tracks := make([]BlockTrack, 0, len(sources))
	for _, s := range sources {
		tracks = append(tracks, BlockTrack{
			SourceClass: s,
			Blocks:      Chunk(bySource[s], window, width),
		})
	}
	return tracks
}

// DominantClassification returns the classification with the largest
// cumulative overlap inside the block. Ties go to the lexicographically
// smaller name so the result does not depend on member order.
func DominantClassification(block model.TimeBlock) string {
	totals := make(map[string]int64)
	for _, iv := range block.Members {
		totals[iv.Classification] += iv.OverlapMs(block.BlockStart, block.BlockEnd)
	}

	best := ""
	var bestMs int64 = -1
	for class, ms := range totals {
		if ms > bestMs || (ms == bestMs && class < best) {
			best = class
			bestMs = ms
		}
	}
	return best
}

// sortIntervals returns a copy ordered by start, end, then origin index.
func sortIntervals(intervals []model.Interval) []model.Interval {
	sorted := make([]model.Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.OriginRef.Index < b.OriginRef.Index
	})
	return sorted
}
