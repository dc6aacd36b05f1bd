package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// ProbeResult is the presence measured over one probe window.
type ProbeResult struct {
	ActiveMs     int64
	InactiveMs   int64
	InactiveOnly bool
}

// Presence answers "was the user at the device" for arbitrary windows,
// from a stream of spans tagged active or inactive.
type Presence struct {
	active   []model.TimeRange
	inactive []model.TimeRange
}

// NewPresence builds an overlay from status intervals; isActive decides the
// tag of each one.
func NewPresence(status []model.Interval, isActive func(model.Interval) bool) *Presence {
	p := &Presence{}
	for _, iv := range status {
		if isActive(iv) {
			p.AddActive(iv.Start, iv.End)
		} else {
			p.AddInactive(iv.Start, iv.End)
		}
	}
	return p
}

// AddActive records an active span.
func (p *Presence) AddActive(start, end int64) {
	if end > start {
		p.active = insertRange(p.active, model.TimeRange{Start: start, End: end})
	}
}

// AddInactive records an inactive span.
func (p *Presence) AddInactive(start, end int64) {
	if end > start {
		p.inactive = insertRange(p.inactive, model.TimeRange{Start: start, End: end})
	}
}

// Known reports whether any presence signal exists. Without one nothing is
// ever judged inactive-only.
func (p *Presence) Known() bool {
	return p != nil && (len(p.active) > 0 || len(p.inactive) > 0)
}

// Probe measures [start, end). The window is inactive-only when the signal is
// known and there is no active overlap at all: any genuine activity keeps
// the window visible regardless of how much inactivity surrounds it.
func (p *Presence) Probe(start, end int64) ProbeResult {
	if !p.Known() {
		return ProbeResult{}
	}
	res := ProbeResult{
		ActiveMs:   overlapTotal(p.active, start, end),
		InactiveMs: overlapTotal(p.inactive, start, end),
	}
	res.InactiveOnly = res.ActiveMs == 0
	return res
}

// Slices probes the window in fixed-size slices aligned to its start.
func (p *Presence) Slices(window model.DayWindow, width time.Duration) []model.PresenceSlice {
	w := width.Milliseconds()
	if w <= 0 || !p.Known() {
		return nil
	}
	var slices []model.PresenceSlice
	for start := window.Start; start < window.End; start += w {
		end := min(start+w, window.End)
		res := p.Probe(start, end)
		slices = append(slices, model.PresenceSlice{
			Start:        start,
			End:          end,
			ActiveMs:     res.ActiveMs,
			InactiveMs:   res.InactiveMs,
			InactiveOnly: res.InactiveOnly,
		})
	}
	return slices
}

// IsActiveStatus reports whether a status interval's classification means
// the user was present.
func IsActiveStatus(iv model.Interval) bool {
	switch strings.ToLower(iv.Classification) {
	case model.StatusActive, "active", "present", "online":
		return true
	}
	return false
}

func insertRange(ranges []model.TimeRange, r model.TimeRange) []model.TimeRange {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].Start > r.Start })
	ranges = append(ranges, model.TimeRange{})
	copy(ranges[i+1:], ranges[i:])
	ranges[i] = r
	return ranges
}

func overlapTotal(ranges []model.TimeRange, start, end int64) int64 {
	var total int64
	for _, r := range ranges {
		if r.Start >= end {
			break
		}
		total += model.OverlapMs(r.Start, r.End, start, end)
	}
	return total
}
