package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// Output format names accepted by NewFormatter.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Formatter writes reconstructed timelines to w.
type Formatter interface {
	FormatDay(w io.Writer, day *model.DayTimeline) error
	FormatSchedule(w io.Writer, schedule *model.Schedule) error
}

// NewFormatter picks a formatter by name. loc is used for clock times.
func NewFormatter(format string, loc *time.Location) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return NewTableFormatter(loc), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
