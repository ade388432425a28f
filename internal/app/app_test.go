package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nvu/chatdeck/internal/model"
)

func TestHelpKeyTogglesExpandedHints(t *testing.T) {
	m := New(&model.AppConfig{}, nil, nil)
	m.currentView = ViewSummaries

	base := m.statusHints()
	require.NotContains(t, base, "j/k move")

	press := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")}
	mdl, _ := m.handleKeys(press)
	m = mdl.(Model)
	require.Contains(t, m.statusHints(), "j/k move")

	mdl, _ = m.handleKeys(press)
	m = mdl.(Model)
	require.Equal(t, base, m.statusHints())
}
