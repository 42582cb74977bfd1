package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Palette commands.
const (
	Refresh   CommandMsg = "refresh"
	Board     CommandMsg = "board"
	History   CommandMsg = "history"
	AI        CommandMsg = "ai"
	Settings  CommandMsg = "settings"
	StopTimer CommandMsg = "stop-timer"
	Help      CommandMsg = "help"
	Quit      CommandMsg = "quit"
)

var descriptions = map[CommandMsg]string{
	Refresh:   "sync tasks from the backend now",
	Board:     "back to the status board",
	History:   "timer session history",
	AI:        "AI report panel",
	Settings:  "backend, user and token settings",
	StopTimer: "stop the running timer",
	Help:      "keyboard shortcuts",
	Quit:      "exit",
}

// Commands returns every palette command, sorted.
func Commands() []string {
	names := make([]string, 0, len(descriptions))
	for c := range descriptions {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

// Resolve maps input to a command. A unique prefix is enough.
func Resolve(input string) (CommandMsg, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", fmt.Errorf("empty command")
	}
	if _, ok := descriptions[CommandMsg(input)]; ok {
		return CommandMsg(input), nil
	}

	var matches []string
	for _, name := range Commands() {
		if strings.HasPrefix(name, input) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command %q", input)
	case 1:
		return CommandMsg(matches[0]), nil
	default:
		return "", fmt.Errorf("%q is ambiguous: %s", input, strings.Join(matches, ", "))
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    error
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands())
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			input := m.input.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			c, err := Resolve(input)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.input.Reset()
			return m, func() tea.Msg {
				return c
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	parts := []string{titleStyle.Render("Command Palette"), m.input.View()}

	if m.err != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.err.Error()))
	}

	parts = append(parts, "")
	for _, name := range Commands() {
		parts = append(parts, fmt.Sprintf("%-12s %s",
			name, theme.DimmedStyle.Render(descriptions[CommandMsg(name)])))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Reset clears the input and any error.
func (m *Model) Reset() {
	m.input.Reset()
	m.err = nil
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
