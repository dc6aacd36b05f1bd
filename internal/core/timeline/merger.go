package timeline

import (
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// Merge collapses a chronologically sorted block sequence greedily from left
// to right. It is a fold over Extend, so merging [A, B, C] in one pass gives
// the same boundaries as merging [A, B] and extending with C.
func Merge(blocks []model.TimeBlock, presence *Presence) []model.MergedBlock {
	var merged []model.MergedBlock
	for _, block := range blocks {
		merged = Extend(merged, block, presence)
	}
	return merged
}

// Extend adds one block after the already merged sequence. The block joins
// the last merged block when they touch, share the dominant classification
// and agree on being inactive-only; otherwise it starts a new merged block.
// The input slice is not modified.
func Extend(merged []model.MergedBlock, block model.TimeBlock, presence *Presence) []model.MergedBlock {
	dominant := DominantClassification(block)
	inactive := presence.Probe(block.BlockStart, block.BlockEnd).InactiveOnly

	n := len(merged)
	if n > 0 {
		last := merged[n-1]
		if last.End == block.BlockStart &&
			last.SourceClass == block.SourceClass &&
			last.Classification == dominant &&
			last.InactiveOnly == inactive {
			blocks := make([]model.TimeBlock, 0, len(last.Blocks)+1)
			blocks = append(blocks, last.Blocks...)
			last.Blocks = append(blocks, block)
			last.End = block.BlockEnd
			last.Members = unionMembers(last.Members, block.Members)
			last.DurationSeconds = coverageSeconds(last.Members, last.Start, last.End)

			out := make([]model.MergedBlock, n)
			copy(out, merged)
			out[n-1] = last
			return out
		}
	}

	members := unionMembers(nil, block.Members)
	out := make([]model.MergedBlock, n, n+1)
	copy(out, merged)
	return append(out, model.MergedBlock{
		Start:           block.BlockStart,
		End:             block.BlockEnd,
		SourceClass:     block.SourceClass,
		Classification:  dominant,
		Blocks:          []model.TimeBlock{block},
		Members:         members,
		DurationSeconds: coverageSeconds(members, block.BlockStart, block.BlockEnd),
		InactiveOnly:    inactive,
	})
}

type memberKey struct {
	kind  model.SourceKind
	index int
	start int64
}

// unionMembers appends the members of b not already present in a. An
// interval overlapping several blocks is kept once.
func unionMembers(a, b []model.Interval) []model.Interval {
	seen := make(map[memberKey]bool, len(a)+len(b))
	result := make([]model.Interval, 0, len(a)+len(b))
	for _, list := range [][]model.Interval{a, b} {
		for _, iv := range list {
			key := memberKey{kind: iv.OriginRef.Kind, index: iv.OriginRef.Index, start: iv.Start}
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, iv)
		}
	}
	return sortIntervals(result)
}

// coverageSeconds is the length of the union of members clipped to [start, end).
func coverageSeconds(members []model.Interval, start, end int64) float64 {
	ranges := make([]model.TimeRange, 0, len(members))
	for _, iv := range members {
		lo, hi := max(iv.Start, start), min(iv.End, end)
		if hi > lo {
			ranges = append(ranges, model.TimeRange{Start: lo, End: hi})
		}
	}
	var total int64
	for _, r := range unionRanges(ranges) {
		total += r.End - r.Start
	}
	return float64(total) / 1000
}
