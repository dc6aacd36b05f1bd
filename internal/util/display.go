package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset   = "\033[0m"
	ColorMagenta = "\033[35m"
	ColorYellow  = "\033[33m"
	ColorBold    = "\033[1m"

	ClearScreen    = "\033[2J"   // Clear entire screen
	MoveCursorHome = "\033[H"    // Move cursor to home position
	HideCursor     = "\033[?25l" // Hide cursor
	ShowCursor     = "\033[?25h" // Show cursor
	ClearToEnd     = "\033[J"    // Clear from cursor to end of screen

	EnterAltScreen = "\033[?1049h"
	ExitAltScreen  = "\033[?1049l"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for emojis
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth cuts text to at most width display cells, adding an ellipsis
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(text, width, "…")
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorMagenta, title, ColorReset)
}

// FormatDiagnosticTitle formats diagnostic/analysis titles (Yellow + Bold)
func FormatDiagnosticTitle(title string) string {
	return fmt.Sprintf("%s%s%s%s", ColorBold, ColorYellow, title, ColorReset)
}

// FormatSectionSeparator returns a horizontal rule
func FormatSectionSeparator() string {
	return strings.Repeat("=", 60)
}
