package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/docnav/internal/outline"
)

var (
	colorInfo    = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("220")
	colorError   = lipgloss.Color("196")
	colorDim     = lipgloss.Color("241")
	colorMatch   = lipgloss.Color("205")

	textStyle = lipgloss.NewStyle()

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	stackStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorMatch)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorInfo)

	categoryStyles = map[string]lipgloss.Style{
		outline.TagInfo:    lipgloss.NewStyle().Foreground(colorInfo),
		outline.TagSuccess: lipgloss.NewStyle().Foreground(colorSuccess),
		outline.TagWarning: lipgloss.NewStyle().Foreground(colorWarning),
		outline.TagError:   lipgloss.NewStyle().Foreground(colorError),
	}
)

// nodeStyle picks the style for n: category color, then cursor emphasis.
func nodeStyle(n *outline.Node) lipgloss.Style {
	st, ok := categoryStyles[n.Category()]
	if !ok {
		st = textStyle
	}
	switch {
	case n.Current():
		st = st.Inherit(currentStyle)
	case n.InStack():
		st = st.Inherit(stackStyle)
	}
	if n.HasTag(outline.TagSeparator) {
		st = st.Inherit(dimStyle)
	}
	return st
}
