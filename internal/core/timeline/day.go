package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/constants"
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

var ErrInvalidDayKey = errors.New("invalid day key")

// ParseDayKey validates a YYYY-MM-DD key and returns local midnight of that day.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(constants.DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDayKey, key, err)
	}
	return t, nil
}

// WindowForKey returns [local midnight, next local midnight) for the day key.
// DST transition days are 23 or 25 hours long.
func WindowForKey(key string, loc *time.Location) (model.DayWindow, error) {
	start, err := ParseDayKey(key, loc)
	if err != nil {
		return model.DayWindow{}, err
	}
	return windowFrom(start), nil
}

// WindowAt returns the local day window containing the instant ms.
func WindowAt(ms int64, loc *time.Location) model.DayWindow {
	if loc == nil {
		loc = time.Local
	}
	t := time.UnixMilli(ms).In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return windowFrom(start)
}

// DayKeyOf returns the local calendar date of the instant ms.
func DayKeyOf(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(constants.DayKeyLayout)
}

// NextMidnight returns the first local midnight strictly after ms.
func NextMidnight(ms int64, loc *time.Location) int64 {
	return WindowAt(ms, loc).End
}

// DayKeysBetween lists the day keys from..to inclusive.
func DayKeysBetween(from, to string, loc *time.Location) ([]string, error) {
	start, err := ParseDayKey(from, loc)
	if err != nil {
		return nil, err
	}
	end, err := ParseDayKey(to, loc)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range %s..%s is reversed", ErrInvalidDayKey, from, to)
	}

	var keys []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(constants.DayKeyLayout))
		if len(keys) > constants.MaxScheduleDays {
			return nil, fmt.Errorf("%w: range %s..%s exceeds %d days", ErrInvalidDayKey, from, to, constants.MaxScheduleDays)
		}
	}
	return keys, nil
}

func windowFrom(midnight time.Time) model.DayWindow {
	next := midnight.AddDate(0, 0, 1)
	return model.DayWindow{
		Key:   midnight.Format(constants.DayKeyLayout),
		Start: midnight.UnixMilli(),
		End:   next.UnixMilli(),
	}
}
