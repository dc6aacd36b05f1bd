package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-day-timeline/internal/util"
	"golang.org/x/term"
)

const (
	// DefaultWidth is used when the terminal size is unknown.
	DefaultWidth = 74
	// MaxWidth caps the rendered table on very wide terminals.
	MaxWidth = 120
)

const minTerminalWidth = 60

// Package-level singleton Sizer instance
var sharedSizer = &Sizer{}

// Shared returns the process-wide Sizer bound to stdout.
func Shared() *Sizer {
	return sharedSizer
}

type Sizer struct {
	// terminalWidth overrides the stdout probe when non-nil.
	terminalWidth func() (int, error)
}

// NewFixedSizer returns a Sizer that reports the given terminal width.
func NewFixedSizer(width int) *Sizer {
	return &Sizer{terminalWidth: func() (int, error) { return width, nil }}
}

// displayWidth calculates the actual display width of a string containing emojis and Unicode characters
func (i Sizer) displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (i Sizer) PadString(s string, width int, leftAlign bool) string {
	actualWidth := i.displayWidth(s)
	if actualWidth >= width {
		return s
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// FitString truncates s to width cells and pads it back to exactly width.
func (i Sizer) FitString(s string, width int, leftAlign bool) string {
	if i.displayWidth(s) > width {
		s = util.TruncateToWidth(s, width)
	}
	return i.PadString(s, width, leftAlign)
}

func (i Sizer) GetMaxWidth() int {
	probe := i.terminalWidth
	if probe == nil {
		probe = func() (int, error) {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			return w, err
		}
	}

	termWidth, err := probe()
	if err != nil || termWidth < minTerminalWidth {
		termWidth = DefaultWidth
	}

	// Leave some margin
	maxWidth := termWidth - 8
	if maxWidth > MaxWidth {
		maxWidth = MaxWidth
	}

	util.LogDebugf("GetMaxWidth %d", maxWidth)
	return maxWidth
}
