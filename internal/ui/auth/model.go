package auth

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nvu/chatdeck/internal/theme"
)

// LoginSubmittedMsg is sent when the user submits the sign-in form.
// The credentials still need to be validated against the backend.
type LoginSubmittedMsg struct {
	BaseURL string
	Token   string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL string
	token   string
}

// Model is the sign-in view: a form asking for the backend URL and an
// access token.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errText string
	width   int
	height  int
}

// New creates the sign-in form, pre-filling the server URL when one is
// already configured.
func New(baseURL string, width, height int) Model {
	m := Model{
		fb:     &formBindings{baseURL: baseURL},
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// SetError displays a validation failure (e.g., rejected token) and
// resets the form for another attempt.
func (m *Model) SetError(text string) tea.Cmd {
	m.errText = text
	m.form = m.buildForm()
	return m.form.Init()
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the sign-in form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		baseURL := strings.TrimSpace(m.fb.baseURL)
		token := strings.TrimSpace(m.fb.token)
		return m, func() tea.Msg {
			return LoginSubmittedMsg{BaseURL: baseURL, Token: token}
		}
	}

	return m, cmd
}

// View renders the sign-in form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Sign in to chatdeck") + "\n"
	if m.errText != "" {
		content += lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render(m.errText) + "\n"
	}
	content += m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Placeholder("https://chat.example.com").
				Value(&m.fb.baseURL).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("server URL is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Access token").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("access token is required")
					}
					return nil
				}),
		),
	).WithWidth(minInt(m.width-4, 72))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
