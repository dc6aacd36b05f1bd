package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
	"github.com/penwyp/go-day-timeline/internal/presentation/layout"
	"github.com/penwyp/go-day-timeline/internal/util"
)

const (
	minItemWidth     = 12
	minDurationWidth = 8
	// Border and padding cells of a four-column row.
	tableChrome = 13
)

type TableFormatter struct {
	loc     *time.Location
	sizer   *layout.Sizer
	headers []string
}

// rowItem is one rendered table row.
type rowItem struct {
	kind     model.RenderKind
	start    int64
	end      int64
	live     bool
	clock    string
	track    string
	label    string
	duration string
}

func NewTableFormatter(loc *time.Location) *TableFormatter {
	return NewTableFormatterWithSizer(loc, layout.Shared())
}

// NewTableFormatterWithSizer renders against an explicit terminal size.
func NewTableFormatterWithSizer(loc *time.Location, sizer *layout.Sizer) *TableFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &TableFormatter{
		loc:     loc,
		sizer:   sizer,
		headers: []string{"Time", "Track", "Activity", "Duration"},
	}
}

func (f *TableFormatter) FormatDay(w io.Writer, day *model.DayTimeline) error {
	var b strings.Builder
	f.renderDay(&b, day)
	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TableFormatter) FormatSchedule(w io.Writer, schedule *model.Schedule) error {
	var b strings.Builder
	if schedule == nil || len(schedule.Days) == 0 {
		b.WriteString("No days in range\n")
	} else {
		for i := range schedule.Days {
			if i > 0 {
				b.WriteString("\n")
			}
			f.renderDay(&b, &schedule.Days[i])
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TableFormatter) renderDay(b *strings.Builder, day *model.DayTimeline) {
	if day == nil {
		b.WriteString("No timeline\n")
		return
	}

	maxWidth := f.sizer.GetMaxWidth()

	title := "Timeline " + day.Window.Key
	if day.IsToday {
		title += " (today, " + time.UnixMilli(day.Now).In(f.loc).Format("15:04") + ")"
	}
	b.WriteString(util.FormatHeaderTitle(title))
	b.WriteString("\n")

	stripWidth := maxWidth - 2
	if stripWidth > 96 {
		stripWidth = 96
	}
	b.WriteString("│")
	b.WriteString(styleStrip.Render(layout.DayStrip(day, stripWidth)))
	b.WriteString("│\n")

	if len(day.Items) == 0 {
		b.WriteString("No activity recorded\n")
		f.renderDiagnostics(b, day.Diagnostics)
		return
	}

	rows := f.toRows(day.Items)
	widths := f.calculateColumnWidths(rows, maxWidth)

	f.printBorder(b, widths, "top")
	f.printRow(b, f.headers, widths, nil)
	f.printBorder(b, widths, "middle")
	for i := range rows {
		values := []string{rows[i].clock, rows[i].track, rows[i].label, rows[i].duration}
		f.printRow(b, values, widths, &rows[i])
	}
	f.printBorder(b, widths, "middle")
	manual, passive := totals(day)
	f.printRow(b, []string{"Total", "manual", "", util.FormatMillisDuration(manual)}, widths, nil)
	f.printRow(b, []string{"", "passive", "", util.FormatSeconds(passive)}, widths, nil)
	f.printBorder(b, widths, "bottom")

	f.renderDiagnostics(b, day.Diagnostics)
}

// toRows converts items to rows. Gaps are detected per slot, so adjacent
// gaps of one track are collapsed into a single row.
func (f *TableFormatter) toRows(items []model.RenderItem) []rowItem {
	rows := make([]rowItem, 0, len(items))
	lastGap := make(map[string]int)
	for _, item := range items {
		if item.Kind == model.ItemGap {
			if i, ok := lastGap[item.Track]; ok && rows[i].end == item.Start {
				rows[i].end = item.End
				rows[i].clock = util.FormatClockRange(rows[i].start, rows[i].end, f.loc)
				rows[i].duration = util.FormatMillisDuration(rows[i].end - rows[i].start)
				continue
			}
			lastGap[item.Track] = len(rows)
		}
		rows = append(rows, f.toRow(item))
	}
	return rows
}

func (f *TableFormatter) toRow(item model.RenderItem) rowItem {
	row := rowItem{
		kind:  item.Kind,
		start: item.Start,
		end:   item.End,
		clock: util.FormatClockRange(item.Start, item.End, f.loc),
		track: item.Track,
	}

	switch item.Kind {
	case model.ItemManual:
		iv := item.Interval
		row.label = iv.Classification
		if iv.IsContinuation() {
			row.label = "↳ " + row.label
		}
		if iv.Live {
			row.live = true
			row.label += " (live)"
		}
		row.duration = util.FormatMillisDuration(iv.DurationMs())
	case model.ItemBlock:
		row.label = fmt.Sprintf("%s [%s]", item.Block.Classification,
			util.FormatCount(len(item.Block.Members), "event", "events"))
		row.duration = util.FormatSeconds(item.Block.DurationSeconds)
	case model.ItemGroup:
		row.label = fmt.Sprintf("%s ×%d", item.Group.Classification, item.Group.Count())
		row.duration = util.FormatSeconds(item.Group.TotalDurationSeconds)
	default:
		row.label = "-"
		row.duration = util.FormatMillisDuration(item.End - item.Start)
	}
	return row
}

// calculateColumnWidths sizes Time, Track and Duration to their content and
// gives Activity whatever is left of maxWidth.
func (f *TableFormatter) calculateColumnWidths(rows []rowItem, maxWidth int) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	widths[1] = max(widths[1], util.GetDisplayWidth("passive"))
	widths[3] = max(widths[3], minDurationWidth)

	label := 0
	for _, row := range rows {
		widths[0] = max(widths[0], util.GetDisplayWidth(row.clock))
		widths[1] = max(widths[1], util.GetDisplayWidth(row.track))
		widths[3] = max(widths[3], util.GetDisplayWidth(row.duration))
		label = max(label, util.GetDisplayWidth(row.label))
	}

	available := maxWidth - tableChrome - widths[0] - widths[1] - widths[3]
	widths[2] = max(min(label, available), minItemWidth, widths[2])
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

// printRow prints a row; the duration column is right-aligned. A non-nil
// item styles the activity cell.
func (f *TableFormatter) printRow(b *strings.Builder, values []string, widths []int, item *rowItem) {
	b.WriteString("│")
	for i, value := range values {
		cell := f.sizer.FitString(value, widths[i], i != len(values)-1)
		if item != nil && i == 2 {
			cell = styleFor(*item).Render(cell)
		}
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" │")
	}
	b.WriteString("\n")
}

func (f *TableFormatter) renderDiagnostics(b *strings.Builder, diags []model.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	b.WriteString(util.FormatDiagnosticTitle(fmt.Sprintf("Skipped %s", util.FormatCount(len(diags), "record", "records"))))
	b.WriteString("\n")
	for _, d := range diags {
		fmt.Fprintf(b, "  %s %s#%d: %s\n", d.Kind, d.Ref.Kind, d.Ref.Index, d.Message)
	}
}

// totals returns manual ms and passive content seconds of the day.
func totals(day *model.DayTimeline) (int64, float64) {
	var manual int64
	for _, iv := range day.Manual {
		manual += iv.DurationMs()
	}

	var passive float64
	for _, track := range day.PassiveTracks {
		for _, b := range track.Blocks {
			if !b.InactiveOnly {
				passive += b.DurationSeconds
			}
		}
	}
	return manual, passive
}
