package timeline

import (
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// SplitAtMidnight cuts an interval at every local midnight it crosses. The
// first piece stays attributed to the start day; every later piece is a
// virtual continuation that remembers the original start. Pieces concatenate
// back to the original exactly. An interval ending exactly at midnight does
// not cross it.
func SplitAtMidnight(iv model.Interval, loc *time.Location) []model.Interval {
	boundary := NextMidnight(iv.Start, loc)
	if iv.End <= boundary {
		return []model.Interval{iv}
	}

	continuedFrom := iv.Start
	if iv.Continuation != nil {
		continuedFrom = iv.Continuation.ContinuedFrom
	}

	var pieces []model.Interval
	head := iv
	head.End = boundary
	pieces = append(pieces, head)

	cursor := boundary
	for cursor < iv.End {
		next := min(NextMidnight(cursor, loc), iv.End)
		piece := iv
		piece.Start = cursor
		piece.End = next
		piece.Continuation = &model.Continuation{ContinuedFrom: continuedFrom, Virtual: true}
		pieces = append(pieces, piece)
		cursor = next
	}

	return pieces
}

// ClipToDay returns the pieces of each interval that SplitAtMidnight would
// place on window's day, without producing the pieces for other days. An
// interval that started on an earlier day yields one virtual continuation
// from window.Start. Cost is constant per interval regardless of its length.
func ClipToDay(intervals []model.Interval, window model.DayWindow) []model.Interval {
	var result []model.Interval
	for _, iv := range intervals {
		switch {
		case window.Contains(iv.Start):
			head := iv
			head.End = min(iv.End, window.End)
			result = append(result, head)
		case iv.Start < window.Start && iv.End > window.Start:
			continuedFrom := iv.Start
			if iv.Continuation != nil {
				continuedFrom = iv.Continuation.ContinuedFrom
			}
			piece := iv
			piece.Start = window.Start
			piece.End = min(iv.End, window.End)
			piece.Continuation = &model.Continuation{ContinuedFrom: continuedFrom, Virtual: true}
			result = append(result, piece)
		}
	}
	return result
}
