package formatter

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

var (
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow

	styleManual = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleLive = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleBlock = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleGroup = lipgloss.NewStyle().
			Foreground(colorHighlight)

	styleGap = lipgloss.NewStyle().
			Foreground(colorDim)

	styleStrip = lipgloss.NewStyle().
			Foreground(colorPrimary)
)

func styleFor(item rowItem) lipgloss.Style {
	switch {
	case item.live:
		return styleLive
	case item.kind == model.ItemManual:
		return styleManual
	case item.kind == model.ItemBlock:
		return styleBlock
	case item.kind == model.ItemGroup:
		return styleGroup
	default:
		return styleGap
	}
}
