package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	aiservice "github.com/nhle/helpdesk-console/internal/ai"
	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/theme"
)

// requestTimeout bounds one analysis round trip.
const requestTimeout = 60 * time.Second

var periods = []string{aiservice.PeriodAll, aiservice.PeriodWeek, aiservice.PeriodMonth}

// AIPanelCloseMsg signals the parent to close the AI panel.
type AIPanelCloseMsg struct{}

// answerMsg carries a finished exchange.
type answerMsg struct {
	exchange aiservice.Exchange
}

// suggestionsMsg carries suggested questions.
type suggestionsMsg struct {
	questions []string
	err       error
}

// Directory lists agents and teams for the snapshot. Either may fail;
// the report then goes out without them.
type Directory interface {
	ListAgents(ctx context.Context) ([]model.Agent, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
}

// Model is the AI report panel: suggested questions, a question box and
// the bounded history of answers.
type Model struct {
	client      *aiservice.Client
	reader      aiservice.SnapshotReader
	directory   Directory
	conv        *aiservice.Conversation
	input       textarea.Model
	viewport    viewport.Model
	suggestions []string
	suggestIdx  int
	period      int
	asking      bool
	keys        *keys.KeyMap
	width       int
	height      int
}

// New creates the panel. A nil client means no analysis service is
// configured and the panel shows how to set one up.
func New(
	client *aiservice.Client,
	reader aiservice.SnapshotReader,
	directory Directory,
	k *keys.KeyMap,
	width, height int,
) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about projects, tasks or agents..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vp := viewport.New(width-4, max(height-10, 4))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		client:    client,
		reader:    reader,
		directory: directory,
		conv:      aiservice.NewConversation(20),
		input:     ta,
		viewport:  vp,
		keys:      k,
		width:     width,
		height:    height,
	}
	m.refreshViewport()
	return m
}

// Init returns the initial command for the AI panel.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the AI panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		m.asking = false
		m.conv.Add(msg.exchange)
		m.refreshViewport()
		return m, nil

	case suggestionsMsg:
		if msg.err != nil {
			slog.Debug("suggested questions unavailable", "error", msg.err)
			return m, nil
		}
		m.suggestions = msg.questions
		m.suggestIdx = 0
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	if taCmd != nil {
		cmds = append(cmds, taCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	if vpCmd != nil {
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input for the AI panel.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, func() tea.Msg {
			return AIPanelCloseMsg{}
		}

	case "tab":
		m.period = (m.period + 1) % len(periods)
		return m, nil

	case "ctrl+s":
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[m.suggestIdx])
			m.suggestIdx = (m.suggestIdx + 1) % len(m.suggestions)
		}
		return m, nil

	case "ctrl+r":
		m.conv.Reset()
		m.refreshViewport()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.client == nil || m.asking {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.asking = true
		m.refreshViewport()
		return m, m.ask(text, periods[m.period])
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) snapshot(ctx context.Context) (aiservice.Snapshot, error) {
	var (
		agents []model.Agent
		teams  []model.Team
	)
	if m.directory != nil {
		var err error
		if agents, err = m.directory.ListAgents(ctx); err != nil {
			slog.Warn("listing agents for report", "error", err)
		}
		if teams, err = m.directory.ListTeams(ctx); err != nil {
			slog.Warn("listing teams for report", "error", err)
		}
	}
	return aiservice.BuildSnapshot(ctx, m.reader, agents, teams)
}

// ask returns a command that sends question to the analysis service.
func (m Model) ask(question, period string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		ex := aiservice.Exchange{Question: question, AskedAt: time.Now()}
		snap, err := m.snapshot(ctx)
		if err != nil {
			ex.Err = err
			return answerMsg{exchange: ex}
		}

		resp, err := m.client.Analyze(ctx, aiservice.AnalysisRequest{
			Query:        question,
			FilterPeriod: period,
			Snapshot:     snap,
		})
		if err != nil {
			ex.Err = err
			return answerMsg{exchange: ex}
		}
		ex.Answer = *resp
		return answerMsg{exchange: ex}
	}
}

// LoadSuggestions returns a command fetching suggested questions.
func (m Model) LoadSuggestions() tea.Cmd {
	if m.client == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		snap, err := m.snapshot(ctx)
		if err != nil {
			return suggestionsMsg{err: err}
		}
		questions, err := m.client.SuggestQuestions(ctx, snap)
		return suggestionsMsg{questions: questions, err: err}
	}
}

// refreshViewport re-renders the history and scrolls to bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation builds the history display string.
func (m Model) renderConversation() string {
	var sections []string

	hint := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	if len(m.suggestions) > 0 {
		sections = append(sections, lipgloss.NewStyle().Bold(true).Render("Suggested questions"))
		for _, q := range m.suggestions {
			sections = append(sections, hint.Render("• "+q))
		}
		sections = append(sections, "")
	}

	exchanges := m.conv.Exchanges()
	if len(exchanges) == 0 && !m.asking {
		sections = append(sections, hint.Render(
			"Ask about workload, overdue tasks or project budgets. "+
				"The current cache is sent with every question."))
		return strings.Join(sections, "\n")
	}

	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	answerStyle := roleStyle.Foreground(theme.ColorGreen)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite).Width(max(m.width-8, 20))

	for _, ex := range exchanges {
		sections = append(sections, userStyle.Render("You:")+" "+ex.Question)
		switch {
		case ex.Err != nil:
			sections = append(sections, lipgloss.NewStyle().
				Foreground(theme.ColorRed).
				Render("Error: "+ex.Err.Error()))
		default:
			label := "Report:"
			if kind := ex.Answer.Kind(); kind != "" {
				label = fmt.Sprintf("Report (%s):", kind)
			}
			sections = append(sections, answerStyle.Render(label))
			sections = append(sections, contentStyle.Render(ex.Answer.Response))
		}
		sections = append(sections, "")
	}

	if m.asking {
		sections = append(sections, hint.Render("Analyzing..."))
	}

	return strings.Join(sections, "\n")
}

// View renders the AI panel.
func (m Model) View() string {
	if m.client == nil {
		return m.renderNotConfigured()
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	title := titleStyle.Render("AI Report") + "  " +
		theme.DimmedStyle.Render("period: "+periods[m.period])

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(
		strings.Repeat("─", max(min(m.width-6, 80), 0)),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		m.viewport.View(),
		separator,
		m.input.View(),
		theme.HelpStyle.Render("enter ask · tab period · ctrl+s suggestion · ctrl+r reset · esc close"),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// renderNotConfigured shows a message when no analysis service is set.
func (m Model) renderNotConfigured() string {
	style := lipgloss.NewStyle().
		Width(m.width - 8).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	msg := "AI reports need the analysis service URL.\n\n" +
		"Set backend.ai_base_url in the config file,\n" +
		"or press c to open settings.\n\n" +
		"Press Esc to go back."

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(style.Render(msg))
}

// SetSize updates the AI panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-10, 4)
	m.refreshViewport()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the history.
func (m *Model) Reset() {
	m.conv.Reset()
	m.asking = false
	m.input.Reset()
	m.refreshViewport()
}
