package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// TasksLoadedMsg is sent when tasks have been loaded from the store.
type TasksLoadedMsg struct {
	Tasks    []model.Task
	Statuses []model.Status
	Err      error
}

// SelectedTaskMsg is sent when a user opens a task's detail.
type SelectedTaskMsg struct {
	Task model.Task
}

// StartTimerMsg asks the parent to start, pause or resume the timer on
// a task.
type StartTimerMsg struct {
	Task model.Task
}

// columns is the board's column order.
var columns = []model.StatusKind{
	model.StatusTodo,
	model.StatusInProgress,
	model.StatusDone,
	model.StatusUnknown,
}

func columnTitle(kind model.StatusKind) string {
	switch kind {
	case model.StatusTodo:
		return "To do"
	case model.StatusInProgress:
		return "In progress"
	case model.StatusDone:
		return "Done"
	default:
		return "Other"
	}
}

// Model is the status board: the user's visible tasks grouped into one
// column per status kind, one column shown at a time.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	user        model.User
	aliases     model.StatusAliases
	filter      store.TaskFilter
	statuses    timer.StatusSet
	groups      map[model.StatusKind][]model.Task
	column      int
	hideDone    bool
	active      *activeTimer
	searchMode  bool
	searchInput textinput.Model
	loadErr     error
	width       int
	height      int
}

// New creates a board for user. aliases map backend status names to
// columns.
func New(
	s store.Store,
	k *keys.KeyMap,
	user model.User,
	aliases model.StatusAliases,
	width, height int,
) Model {
	active := &activeTimer{}
	delegate := ItemDelegate{active: active}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		user:        user,
		aliases:     aliases,
		filter:      store.TaskFilter{SortBy: "id"},
		statuses:    timer.NewStatusSet(nil, aliases),
		groups:      map[model.StatusKind][]model.Task{},
		active:      active,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the cached tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		m.loadErr = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.statuses = timer.NewStatusSet(msg.Statuses, m.aliases)
		m.groups = m.statuses.Group(m.user.VisibleTasks(msg.Tasks))
		return m, m.refreshItems()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := strings.TrimSpace(m.searchInput.Value())
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{Task: task}
		}

	case key.Matches(msg, m.keys.StartTimer):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return StartTimerMsg{Task: task}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextColumn), key.Matches(msg, m.keys.Right):
		return m, m.moveColumn(1)

	case key.Matches(msg, m.keys.Left):
		return m, m.moveColumn(-1)

	case key.Matches(msg, m.keys.ShowAll):
		m.hideDone = !m.hideDone
		if m.hideDone && columns[m.column] == model.StatusDone {
			return m, m.moveColumn(1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// moveColumn shifts the visible column by delta, wrapping around and
// skipping the done column while it is hidden.
func (m *Model) moveColumn(delta int) tea.Cmd {
	for range columns {
		m.column = (m.column + delta + len(columns)) % len(columns)
		if !m.hideDone || columns[m.column] != model.StatusDone {
			break
		}
	}
	m.list.ResetSelected()
	return m.refreshItems()
}

func (m *Model) refreshItems() tea.Cmd {
	kind := columns[m.column]
	tasks := m.groups[kind]
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{Task: t, Kind: kind}
	}
	return m.list.SetItems(items)
}

// View renders the board.
func (m Model) View() string {
	parts := []string{m.renderTabs()}

	if m.searchMode {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View()))
	}

	if len(m.list.Items()) == 0 {
		parts = append(parts, m.renderEmptyState())
	} else {
		parts = append(parts, m.list.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTabs() string {
	var tabs []string
	for i, kind := range columns {
		if m.hideDone && kind == model.StatusDone {
			continue
		}
		label := fmt.Sprintf("%s (%d)", columnTitle(kind), len(m.groups[kind]))
		style := theme.StatusStyle(kind)
		if i == m.column {
			style = style.Underline(true).Reverse(true)
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderEmptyState shows guidance text when the column is empty.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loadErr != nil:
		return style.Render("Could not read the task cache:\n" + m.loadErr.Error())
	case m.filter.Query != nil:
		return style.Render("No matching tasks.\nPress / then enter to clear the search.")
	case m.user.Role == "":
		return style.Render("No user configured.\n\nPress c to open settings.")
	default:
		return style.Render("Nothing in " + strings.ToLower(columnTitle(columns[m.column])) + ".")
	}
}

// LoadTasks returns a tea.Cmd that reads tasks and statuses from the
// cache with the current filter.
func (m Model) LoadTasks() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		tasks, err := s.GetTasks(ctx, filter)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		statuses, err := s.GetStatuses(ctx)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks, Statuses: statuses}
	}
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Column returns the kind of the visible column.
func (m Model) Column() model.StatusKind {
	return columns[m.column]
}

// Statuses returns the status resolver built from the last load.
func (m Model) Statuses() timer.StatusSet {
	return m.statuses
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SetActive marks the task bound to the floating timer. A zero taskID
// clears the mark.
func (m *Model) SetActive(taskID int, running bool) {
	m.active.taskID = taskID
	m.active.running = running
}

// SetUser replaces the user whose tasks are shown.
func (m *Model) SetUser(u model.User) {
	m.user = u
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
