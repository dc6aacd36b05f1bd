package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizerPadString(t *testing.T) {
	s := Sizer{}

	tests := []struct {
		name      string
		input     string
		width     int
		leftAlign bool
		want      string
	}{
		{"left", "ab", 5, true, "ab   "},
		{"right", "ab", 5, false, "   ab"},
		{"already_wide", "abcdef", 3, true, "abcdef"},
		{"wide_runes", "日本", 6, true, "日本  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.PadString(tt.input, tt.width, tt.leftAlign))
		})
	}
}

func TestSizerFitString(t *testing.T) {
	s := Sizer{}

	assert.Equal(t, "abc  ", s.FitString("abc", 5, true))
	assert.Equal(t, "abcd…", s.FitString("abcdefgh", 5, true))
	assert.Equal(t, 5, s.displayWidth(s.FitString("日本語テキスト", 5, true)))
}

func TestSizerGetMaxWidth(t *testing.T) {
	tests := []struct {
		name  string
		probe func() (int, error)
		want  int
	}{
		{"standard", func() (int, error) { return 80, nil }, 72},
		{"narrow_falls_back", func() (int, error) { return 40, nil }, DefaultWidth - 8},
		{"error_falls_back", func() (int, error) { return 0, errors.New("not a terminal") }, DefaultWidth - 8},
		{"capped", func() (int, error) { return 300, nil }, MaxWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sizer{terminalWidth: tt.probe}
			assert.Equal(t, tt.want, s.GetMaxWidth())
		})
	}
}

func TestNewFixedSizer(t *testing.T) {
	assert.Equal(t, 92, NewFixedSizer(100).GetMaxWidth())
}
