package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/chatdeck/internal/theme"
)

// Layout manages the terminal layout dimensions: a one-line navigation
// bar on top, the content area, and a one-line status bar below.
type Layout struct {
	Width           int
	Height          int
	NavBarHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		NavBarHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the navigation bar and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.NavBarHeight - l.StatusBarHeight
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the navigation bar, content area, and status bar.
func (l Layout) RenderWithFrame(
	navbar string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		navbar,
		content,
		statusBar,
	)
}
