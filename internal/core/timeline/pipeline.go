package timeline

import (
	"fmt"
	"sort"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

const manualTrack = "manual"

// Prepared is the part of a day's reconstruction that does not depend on the
// wall clock. It is immutable; At derives a render-ready timeline for a
// given "now" without re-running chunking, merging or grouping.
type Prepared struct {
	opts        Options
	window      model.DayWindow
	today       string
	manual      []model.Interval
	tracks      []model.PassiveTrack
	presence    []model.PresenceSlice
	diagnostics []model.Diagnostic
}

// Prepare runs Normalizer through Event Grouper for opts.DayKey. today is the
// day key of "now"; it decides which manual interval is live. Malformed
// records are dropped and reported, never fatal; only invalid options fail.
func Prepare(inputs Inputs, opts Options, today string) (*Prepared, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := ParseDayKey(today, opts.Location); err != nil {
		return nil, fmt.Errorf("%w: today: %v", ErrInvalidOptions, err)
	}
	window, err := WindowForKey(opts.DayKey, opts.Location)
	if err != nil {
		return nil, err
	}

	p := &Prepared{opts: opts, window: window, today: today}

	if opts.ShowManual {
		markers, diags := NormalizeMarkers(inputs.Markers)
		p.diagnostics = append(p.diagnostics, diags...)
		inferred := InferDurations(markers, today, opts.Location)
		p.manual = ClipToDay(inferred, window)
	}

	if opts.ShowPassive {
		intervals, diags := NormalizeEvents(inputs.Events, inputs.Buckets)
		p.diagnostics = append(p.diagnostics, diags...)
		p.preparePassive(ClipToDay(intervals, window))
	}

	return p, nil
}

func (p *Prepared) preparePassive(intervals []model.Interval) {
	var status, content []model.Interval
	for _, iv := range intervals {
		if iv.SourceClass == p.opts.PresenceSourceClass {
			status = append(status, iv)
		} else {
			content = append(content, iv)
		}
	}

	presence := p.buildPresence(status, content)
	p.presence = presence.Slices(p.window, p.opts.BlockWidth)

	// occurrences recorded while away are noise for grouping as well
	var present []model.Interval
	for _, iv := range content {
		if !presence.Probe(iv.Start, max(iv.End, iv.Start+1)).InactiveOnly {
			present = append(present, iv)
		}
	}
	groupsBySource := make(map[string][]model.EventGroup)
	for _, g := range Group(present, p.opts.GroupGapThreshold) {
		groupsBySource[g.SourceClass] = append(groupsBySource[g.SourceClass], g)
	}

	for _, track := range ChunkBySource(content, p.window, p.opts.BlockWidth) {
		var blocks []model.MergedBlock
		for _, mb := range Merge(track.Blocks, presence) {
			// inactive-only stretches are rendered as gaps
			if mb.InactiveOnly {
				continue
			}
			blocks = append(blocks, mb)
		}
		p.tracks = append(p.tracks, model.PassiveTrack{
			SourceClass: track.SourceClass,
			Blocks:      blocks,
			Groups:      groupsBySource[track.SourceClass],
		})
	}
}

// buildPresence uses the status stream when there is one. Without it, content
// itself is the signal: anything but an inactive classification counts as
// activity. Inactive classifications always add inactive signal.
func (p *Prepared) buildPresence(status, content []model.Interval) *Presence {
	presence := NewPresence(status, IsActiveStatus)
	useContent := len(status) == 0
	for _, iv := range content {
		switch {
		case p.opts.isInactiveClassification(iv.Classification):
			presence.AddInactive(iv.Start, iv.End)
		case useContent:
			presence.AddActive(iv.Start, iv.End)
		}
	}
	return presence
}

// Window returns the day window being reconstructed.
func (p *Prepared) Window() model.DayWindow {
	return p.window
}

// Today returns the day key of "now" the result was prepared for.
func (p *Prepared) Today() string {
	return p.today
}

// IsToday reports whether the prepared day is the day of "now".
func (p *Prepared) IsToday() bool {
	return p.window.Key == p.today
}

// HasLive reports whether the day carries an interval whose end tracks now.
func (p *Prepared) HasLive() bool {
	for _, iv := range p.manual {
		if iv.Live {
			return true
		}
	}
	return false
}

// At finishes the reconstruction for the given now: it patches the live
// interval, clamps the visible window to now when the day is today and runs
// the Gap Detector on every track. now is expected to fall on the day passed
// to Prepare as today.
func (p *Prepared) At(now int64) *model.DayTimeline {
	day := &model.DayTimeline{
		Window:      p.window,
		Now:         now,
		IsToday:     p.IsToday(),
		VisibleEnd:  p.window.End,
		Presence:    append([]model.PresenceSlice(nil), p.presence...),
		Diagnostics: append([]model.Diagnostic(nil), p.diagnostics...),
	}
	if day.IsToday {
		day.VisibleEnd = min(max(now, p.window.Start), p.window.End)
	}

	if p.opts.ShowManual {
		day.Manual = ApplyNow(p.manual, now)
		day.ManualGaps = DetectGaps(IntervalRanges(day.Manual), p.window, day.VisibleEnd, p.opts.SlotSize)
	}

	for _, track := range p.tracks {
		day.PassiveTracks = append(day.PassiveTracks, model.PassiveTrack{
			SourceClass: track.SourceClass,
			Blocks:      append([]model.MergedBlock(nil), track.Blocks...),
			Groups:      append([]model.EventGroup(nil), track.Groups...),
			Gaps:        DetectGaps(BlockRanges(track.Blocks), p.window, day.VisibleEnd, p.opts.SlotSize),
		})
	}

	day.Items = renderItems(day)
	return day
}

// Reconstruct is Prepare followed by At.
func Reconstruct(inputs Inputs, opts Options, now int64) (*model.DayTimeline, error) {
	p, err := Prepare(inputs, opts, DayKeyOf(now, opts.Location))
	if err != nil {
		return nil, err
	}
	return p.At(now), nil
}

var kindOrder = map[model.RenderKind]int{
	model.ItemManual: 0,
	model.ItemBlock:  1,
	model.ItemGroup:  2,
	model.ItemGap:    3,
}

func renderItems(day *model.DayTimeline) []model.RenderItem {
	items := make([]model.RenderItem, 0)

	for i := range day.Manual {
		iv := &day.Manual[i]
		items = append(items, model.RenderItem{Kind: model.ItemManual, Track: manualTrack, Start: iv.Start, End: iv.End, Interval: iv})
	}
	for i := range day.ManualGaps {
		g := &day.ManualGaps[i]
		items = append(items, model.RenderItem{Kind: model.ItemGap, Track: manualTrack, Start: g.Start, End: g.End, Gap: g})
	}
	for t := range day.PassiveTracks {
		track := &day.PassiveTracks[t]
		for i := range track.Blocks {
			b := &track.Blocks[i]
			items = append(items, model.RenderItem{Kind: model.ItemBlock, Track: track.SourceClass, Start: b.Start, End: b.End, Block: b})
		}
		for i := range track.Groups {
			g := &track.Groups[i]
			items = append(items, model.RenderItem{Kind: model.ItemGroup, Track: track.SourceClass, Start: g.TimeRange.Start, End: g.TimeRange.End, Group: g})
		}
		for i := range track.Gaps {
			g := &track.Gaps[i]
			items = append(items, model.RenderItem{Kind: model.ItemGap, Track: track.SourceClass, Start: g.Start, End: g.End, Gap: g})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if kindOrder[a.Kind] != kindOrder[b.Kind] {
			return kindOrder[a.Kind] < kindOrder[b.Kind]
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		return a.End < b.End
	})
	return items
}
