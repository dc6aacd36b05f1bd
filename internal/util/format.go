package util

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as "1h 5m" or "5m"; under a minute as "42s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatMillisDuration renders a span of epoch-ms instants.
func FormatMillisDuration(ms int64) string {
	return FormatDuration(time.Duration(ms) * time.Millisecond)
}

// FormatSeconds renders a float number of seconds.
func FormatSeconds(seconds float64) string {
	return FormatDuration(time.Duration(seconds * float64(time.Second)))
}

// FormatClockRange renders [start, end) as "09:00-09:40" in loc. An end on
// the following local midnight is shown as 24:00.
func FormatClockRange(start, end int64, loc *time.Location) string {
	s := time.UnixMilli(start).In(loc)
	e := time.UnixMilli(end).In(loc)

	endStr := e.Format("15:04")
	if e.Hour() == 0 && e.Minute() == 0 && e.After(s) && e.YearDay() != s.YearDay() {
		endStr = "24:00"
	}
	return fmt.Sprintf("%s-%s", s.Format("15:04"), endStr)
}

// FormatCount renders n with a singular or plural noun.
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
