package display

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
	"github.com/penwyp/go-day-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-day-timeline/internal/util"
)

// TerminalDisplay redraws a day timeline in place for watch mode.
type TerminalDisplay struct {
	mu                sync.Mutex
	out               io.Writer
	formatter         formatter.Formatter
	loc               *time.Location
	inAlternateScreen bool
	isFirstRender     bool
	frames            int
}

func NewTerminalDisplay(out io.Writer, f formatter.Formatter, loc *time.Location) *TerminalDisplay {
	if loc == nil {
		loc = time.Local
	}
	return &TerminalDisplay{
		out:           out,
		formatter:     f,
		loc:           loc,
		isFirstRender: true,
	}
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if td.inAlternateScreen {
		return
	}
	io.WriteString(td.out, util.EnterAltScreen+util.ClearScreen+util.MoveCursorHome+util.HideCursor)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	td.mu.Lock()
	defer td.mu.Unlock()
	if !td.inAlternateScreen {
		return
	}
	io.WriteString(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.ExitAltScreen)
	td.inAlternateScreen = false
}

// Render draws one frame. The first frame clears the screen; later frames
// overwrite from the home position and clear whatever is left below.
func (td *TerminalDisplay) Render(day *model.DayTimeline) error {
	var frame bytes.Buffer
	if err := td.formatter.FormatDay(&frame, day); err != nil {
		return err
	}

	td.mu.Lock()
	defer td.mu.Unlock()

	var buf bytes.Buffer
	if td.isFirstRender {
		buf.WriteString(util.ClearScreen)
		td.isFirstRender = false
	}
	buf.WriteString(util.MoveCursorHome)
	buf.Write(frame.Bytes())
	buf.WriteString(td.statusLine(day))
	buf.WriteString(util.ClearToEnd)

	td.frames++
	_, err := td.out.Write(buf.Bytes())
	return err
}

// Frames returns how many frames were drawn.
func (td *TerminalDisplay) Frames() int {
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.frames
}

func (td *TerminalDisplay) statusLine(day *model.DayTimeline) string {
	line := "\nUpdated " + time.UnixMilli(day.Now).In(td.loc).Format("15:04:05")
	if live := day.LiveInterval(); live != nil {
		line += " · tracking " + live.Classification + " for " + util.FormatMillisDuration(live.DurationMs())
	}
	return line + " · Ctrl+C to exit\n"
}
