package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// section is one titled group of bindings.
type section struct {
	title    string
	bindings [][]key.Binding
	notes    []string
}

// Model is the help screen: bindings grouped by where they apply.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width - 4
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) sections() []section {
	k := m.keys
	return []section{
		{
			title: "Board",
			bindings: [][]key.Binding{
				{k.Up, k.Down, k.Left, k.Right},
				{k.NextColumn, k.ShowAll, k.Search, k.Refresh},
				{k.Select, k.StartTimer, k.Back},
			},
		},
		{
			title: "Timer",
			bindings: [][]key.Binding{
				{k.Pause, k.Abandon},
				{k.Finish, k.ExtraTime},
			},
			notes: []string{
				"Starting a to-do task moves it to in progress first.",
				"Drag the floating timer with the mouse to move it.",
				"A warning shows when " + timer.FormatHMS(timer.WarningThreshold) + " remain.",
				"When time is up: finish now, or add extra time once.",
			},
		},
		{
			title: "Panels",
			bindings: [][]key.Binding{
				{k.AI, k.History, k.Settings},
				{k.Command, k.Help, k.Quit},
			},
		},
	}
}

// View renders the grouped shortcuts.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)
	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		MarginTop(1)

	parts := []string{titleStyle.Render("Keyboard Shortcuts")}
	for _, s := range m.sections() {
		parts = append(parts, headingStyle.Render(s.title), m.help.FullHelpView(s.bindings))
		for _, n := range s.notes {
			parts = append(parts, theme.DimmedStyle.Render(n))
		}
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
