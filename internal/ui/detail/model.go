package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// sessionLimit is how many past timer sessions the detail lists.
const sessionLimit = 10

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// DetailLoadedMsg carries the task with its project and timer history.
type DetailLoadedMsg struct {
	Task     model.Task
	Project  *model.Project
	Sessions []model.SessionRecord
	Err      error
}

// ActionMsg signals the parent to execute an action on the current task.
type ActionMsg struct {
	Action string
	Task   model.Task
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	project  *model.Project
	sessions []model.SessionRecord
	statuses timer.StatusSet
	loadErr  error
	viewport viewport.Model
	bar      progress.Model
	store    store.Store
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(s store.Store, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		store:    s,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Load reads the project and timer sessions of task from the cache.
func (m *Model) Load(task model.Task) tea.Cmd {
	m.loading = true
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		msg := DetailLoadedMsg{Task: task}

		projects, err := s.GetProjects(ctx, true)
		if err != nil {
			msg.Err = err
			return msg
		}
		for i := range projects {
			if projects[i].ID == task.ProjectID {
				msg.Project = &projects[i]
				break
			}
		}

		msg.Sessions, msg.Err = s.GetSessionsForTask(ctx, task.ID, sessionLimit)
		return msg
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		task := msg.Task
		m.task = &task
		m.project = msg.Project
		m.sessions = msg.Sessions
		m.loadErr = msg.Err
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.StartTimer):
			if m.task != nil {
				task := *m.task
				return m, func() tea.Msg {
					return ActionMsg{Action: "start", Task: task}
				}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading task details...")
	}

	if m.task == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No task selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("#%d %s", task.ID, task.Title)))

	statusName := m.statuses.Name(task.StatusID)
	if statusName == "" {
		statusName = fmt.Sprintf("status %d", task.StatusID)
	}
	statusBadge := theme.StatusStyle(m.statuses.KindOf(task.StatusID)).Render(statusName)

	priority := task.Priority
	if priority == "" {
		priority = "no priority"
	}
	priBadge := theme.PriorityStyle(task.Priority).Render(priority)

	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, statusBadge, "  ", priBadge))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(11)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, metaStyle.Render(label+":")+valStyle.Render(value))
	}

	if m.project != nil {
		meta("Project", m.project.Name)
	} else if task.ProjectID != 0 {
		meta("Project", fmt.Sprintf("#%d", task.ProjectID))
	}
	meta("Assignee", task.Assignee)

	duration := task.Duration
	if _, err := timer.ParsePositiveHMS(duration); err != nil {
		duration = fmt.Sprintf("%q (not startable)", task.Duration)
	}
	meta("Duration", duration)
	if task.Price != 0 {
		meta("Price", fmt.Sprintf("%.2f", task.Price))
	}
	meta("Start", task.DateStart)
	meta("End", task.DateEnd)
	sections = append(sections,
		metaStyle.Render("Progress:")+
			m.bar.ViewAs(min(float64(task.Progress), 100)/100)+
			valStyle.Render(fmt.Sprintf(" %d%%", task.Progress)),
	)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render("Description"), "")

	body := task.Description
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	sections = append(sections, "", separator, "")
	sections = append(sections, headerStyle.Render(fmt.Sprintf("Timer sessions (%d)", len(m.sessions))), "")

	switch {
	case m.loadErr != nil:
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorRed).
			Render("Could not load history: "+m.loadErr.Error()))
	case len(m.sessions) == 0:
		sections = append(sections, theme.DimmedStyle.Render("Never timed. Press s to start."))
	default:
		for _, rec := range m.sessions {
			sections = append(sections, renderSession(rec))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderSession(rec model.SessionRecord) string {
	outcome := lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(string(rec.Outcome))
	if rec.Outcome == model.OutcomeAbandoned {
		outcome = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render(string(rec.Outcome))
	}

	extra := ""
	if rec.ExtraSeconds > 0 {
		extra = " +" + timer.FormatHMS(rec.ExtraSeconds)
	}

	return fmt.Sprintf("%s  %s%s  %s  %d%%",
		theme.DimmedStyle.Render(rec.EndedAt.Local().Format("2006-01-02 15:04")),
		timer.FormatHMS(rec.AllottedSeconds), extra,
		outcome, rec.Progress,
	)
}

// SetStatuses sets the resolver used for status badges.
func (m *Model) SetStatuses(set timer.StatusSet) {
	m.statuses = set
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// SetTask replaces the displayed task, keeping the loaded history.
func (m *Model) SetTask(task model.Task) {
	m.task = &task
	m.loading = false
	m.viewport.SetContent(m.renderContent())
}

// Task returns the displayed task.
func (m Model) Task() (model.Task, bool) {
	if m.task == nil {
		return model.Task{}, false
	}
	return *m.task, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.task != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
