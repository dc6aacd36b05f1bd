package layout

import (
	"strings"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// Strip cell glyphs.
const (
	CellManual  = '█'
	CellPassive = '▒'
	CellEmpty   = '·'
	CellFuture  = ' '
)

// DayStrip renders the day window as width cells. A cell shows the
// strongest coverage found anywhere inside it: manual, then passive
// content, then empty. Cells starting after the visible end stay blank.
func DayStrip(day *model.DayTimeline, width int) string {
	if day == nil || width <= 0 {
		return ""
	}

	span := day.Window.End - day.Window.Start
	if span <= 0 {
		return strings.Repeat(string(CellFuture), width)
	}

	var b strings.Builder
	for c := 0; c < width; c++ {
		start := day.Window.Start + span*int64(c)/int64(width)
		end := day.Window.Start + span*int64(c+1)/int64(width)

		switch {
		case start >= day.VisibleEnd:
			b.WriteRune(CellFuture)
		case coversManual(day, start, end):
			b.WriteRune(CellManual)
		case coversPassive(day, start, end):
			b.WriteRune(CellPassive)
		default:
			b.WriteRune(CellEmpty)
		}
	}
	return b.String()
}

func coversManual(day *model.DayTimeline, start, end int64) bool {
	for _, iv := range day.Manual {
		if iv.OverlapMs(start, end) > 0 {
			return true
		}
	}
	return false
}

func coversPassive(day *model.DayTimeline, start, end int64) bool {
	for _, track := range day.PassiveTracks {
		for _, b := range track.Blocks {
			if b.InactiveOnly {
				continue
			}
			if model.OverlapMs(b.Start, b.End, start, end) > 0 {
				return true
			}
		}
		for _, g := range track.Groups {
			for _, occ := range g.Occurrences {
				if occ.OverlapMs(start, end) > 0 {
					return true
				}
			}
		}
	}
	return false
}
