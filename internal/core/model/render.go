package model

// RenderKind identifies what a RenderItem carries.
type RenderKind string

// RenderItem is one entry of a day's render-ready timeline. Exactly one of
// Interval, Block, Group or Gap is set, matching Kind.
type RenderItem struct {
	Kind     RenderKind   `json:"kind"`
	Track    string       `json:"track"`
	Start    int64        `json:"start"`
	End      int64        `json:"end"`
	Interval *Interval    `json:"interval,omitempty"`
	Block    *MergedBlock `json:"block,omitempty"`
	Group    *EventGroup  `json:"group,omitempty"`
	Gap      *Gap         `json:"gap,omitempty"`
}

// PassiveTrack is the reconstructed view of one passive source classification.
type PassiveTrack struct {
	SourceClass string        `json:"sourceClass"`
	Blocks      []MergedBlock `json:"blocks"`
	Groups      []EventGroup  `json:"groups"`
	Gaps        []Gap         `json:"gaps"`
}

// Diagnostic reports a record the engine dropped.
type Diagnostic struct {
	Kind    string    `json:"kind"`
	Ref     OriginRef `json:"ref"`
	Message string    `json:"message"`
}

// DayTimeline is the render-ready reconstruction of one day.
type DayTimeline struct {
	Window        DayWindow       `json:"window"`
	Now           int64           `json:"now"`
	IsToday       bool            `json:"isToday"`
	VisibleEnd    int64           `json:"visibleEnd"`
	Manual        []Interval      `json:"manual,omitempty"`
	ManualGaps    []Gap           `json:"manualGaps,omitempty"`
	PassiveTracks []PassiveTrack  `json:"passiveTracks,omitempty"`
	Presence      []PresenceSlice `json:"presence,omitempty"`
	Items         []RenderItem    `json:"items"`
	Diagnostics   []Diagnostic    `json:"diagnostics,omitempty"`
}

// LiveInterval returns the manual interval still tracking "now", if any.
func (d *DayTimeline) LiveInterval() *Interval {
	for i := range d.Manual {
		if d.Manual[i].Live {
			return &d.Manual[i]
		}
	}
	return nil
}

// Schedule is the multi-day view keyed by day.
type Schedule struct {
	Days []DayTimeline `json:"days"`
}
