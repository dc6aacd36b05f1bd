package model

// SourceKind tells which input stream an interval came from.
type SourceKind string

// OriginRef points an interval back at the raw record it was derived from.
// Index is the record's position in its input slice, i.e. authored order.
type OriginRef struct {
	Kind  SourceKind `json:"kind"`
	ID    string     `json:"id,omitempty"`
	Index int        `json:"index"`
}

// Continuation marks the part of a midnight-crossing interval that belongs
// to a later day than the one it started on.
type Continuation struct {
	ContinuedFrom int64 `json:"continuedFrom"`
	Virtual       bool  `json:"virtual"`
}

// Interval is the canonical unit of the timeline: [Start, End) in epoch ms.
type Interval struct {
	Start            int64         `json:"start"`
	End              int64         `json:"end"`
	Classification   string        `json:"classification"`
	ClassificationID string        `json:"classificationId,omitempty"`
	SourceKind       SourceKind    `json:"sourceKind"`
	SourceClass      string        `json:"sourceClass,omitempty"`
	Color            string        `json:"color,omitempty"`
	OriginRef        OriginRef     `json:"originRef"`
	Live             bool          `json:"live,omitempty"`
	Continuation     *Continuation `json:"continuation,omitempty"`
}

// DurationMs returns End-Start, never negative.
func (iv Interval) DurationMs() int64 {
	if iv.End < iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// DurationSeconds returns the interval length in seconds.
func (iv Interval) DurationSeconds() float64 {
	return float64(iv.DurationMs()) / 1000
}

// IsContinuation reports whether this piece was produced by a day split.
func (iv Interval) IsContinuation() bool {
	return iv.Continuation != nil && iv.Continuation.Virtual
}

// OverlapMs returns how much of [start, end) the interval covers.
func (iv Interval) OverlapMs(start, end int64) int64 {
	return OverlapMs(iv.Start, iv.End, start, end)
}

// OverlapMs returns the length of the intersection of [aStart, aEnd) and [bStart, bEnd).
func OverlapMs(aStart, aEnd, bStart, bEnd int64) int64 {
	lo := max(aStart, bStart)
	hi := min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Marker is a normalized manual marker whose end is not known yet.
type Marker struct {
	Start            int64
	Activity         string
	ClassificationID string
	OriginRef        OriginRef
}

// TimeBlock is a fixed-width, day-aligned window holding every passive
// interval that overlaps it. Members keep their original boundaries.
type TimeBlock struct {
	BlockStart  int64      `json:"blockStart"`
	BlockEnd    int64      `json:"blockEnd"`
	SourceClass string     `json:"sourceClass"`
	Members     []Interval `json:"members"`
}

// MergedBlock is a maximal run of adjacent equivalent blocks.
type MergedBlock struct {
	Start           int64       `json:"start"`
	End             int64       `json:"end"`
	SourceClass     string      `json:"sourceClass"`
	Classification  string      `json:"classification"`
	Blocks          []TimeBlock `json:"-"`
	Members         []Interval  `json:"members"`
	DurationSeconds float64     `json:"durationSeconds"`
	InactiveOnly    bool        `json:"inactiveOnly,omitempty"`
}

// TimeRange is a closed-open span in epoch ms.
type TimeRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// EventGroup collapses recurring occurrences of one classification.
type EventGroup struct {
	Classification       string     `json:"classification"`
	SourceClass          string     `json:"sourceClass"`
	Occurrences          []Interval `json:"occurrences"`
	TotalDurationSeconds float64    `json:"totalDurationSeconds"`
	TimeRange            TimeRange  `json:"timeRange"`
}

// Count returns the number of grouped occurrences.
func (g EventGroup) Count() int {
	return len(g.Occurrences)
}

// Gap is an empty, insertable range of the timeline.
type Gap struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// DurationMs returns the gap length.
func (g Gap) DurationMs() int64 {
	return g.End - g.Start
}

// DayWindow is one local calendar day: [Start, End) between two local midnights.
type DayWindow struct {
	Key   string `json:"day"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// Contains reports whether ts falls inside the window.
func (w DayWindow) Contains(ts int64) bool {
	return ts >= w.Start && ts < w.End
}

// PresenceSlice is the presence overlay measured over one fixed-size slice.
type PresenceSlice struct {
	Start        int64 `json:"start"`
	End          int64 `json:"end"`
	ActiveMs     int64 `json:"activeMs"`
	InactiveMs   int64 `json:"inactiveMs"`
	InactiveOnly bool  `json:"inactiveOnly"`
}
