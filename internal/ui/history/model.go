package history

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// Limit is how many sessions the table loads.
const Limit = 200

// BackMsg signals the parent to close the history.
type BackMsg struct{}

// SessionsLoadedMsg carries the recorded timer sessions.
type SessionsLoadedMsg struct {
	Sessions []model.SessionRecord
	Err      error
}

// Model lists recorded timer sessions, newest first.
type Model struct {
	table    table.Model
	store    store.Store
	keys     *keys.KeyMap
	sessions []model.SessionRecord
	err      error
	width    int
	height   int
}

// New creates the history view.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(max(height-4, 3)),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(theme.ColorWhite).
		Background(theme.ColorBlue).
		Bold(false)
	t.SetStyles(styles)

	return Model{
		table:  t,
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

func columns(width int) []table.Column {
	fixed := 16 + 8 + 9 + 9 + 10 + 5
	title := max(width-fixed-16, 12)
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Task", Width: title},
		{Title: "Allotted", Width: 9},
		{Title: "Extra", Width: 9},
		{Title: "Spent", Width: 8},
		{Title: "Outcome", Width: 10},
		{Title: "%", Width: 5},
	}
}

// Load returns a command that reads sessions from the store.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		sessions, err := s.GetSessions(context.Background(), Limit)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// Init loads the history.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionsLoadedMsg:
		m.sessions = msg.Sessions
		m.err = msg.Err
		m.table.SetRows(rows(msg.Sessions))
		m.table.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func rows(sessions []model.SessionRecord) []table.Row {
	out := make([]table.Row, len(sessions))
	for i, s := range sessions {
		extra := "-"
		if s.ExtraSeconds > 0 {
			extra = timer.FormatHMS(s.ExtraSeconds)
		}
		out[i] = table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("#%d %s", s.TaskID, s.TaskTitle),
			timer.FormatHMS(s.AllottedSeconds),
			extra,
			formatSpent(s.Elapsed()),
			string(s.Outcome),
			fmt.Sprintf("%d", s.Progress),
		}
	}
	return out
}

func formatSpent(d time.Duration) string {
	return timer.FormatHMS(int(d.Round(time.Second) / time.Second))
}

// View renders the history table.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(fmt.Sprintf("Timer history (%d)", len(m.sessions)))

	var body string
	switch {
	case m.err != nil:
		body = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("Could not load history: " + m.err.Error())
	case len(m.sessions) == 0:
		body = theme.DimmedStyle.Render("No timer sessions recorded yet.")
	default:
		body = m.table.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// SetSize updates the table dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-4, 3))
}
