package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	aiservice "github.com/nhle/helpdesk-console/internal/ai"
	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/notify"
	"github.com/nhle/helpdesk-console/internal/source/helpdesk"
	"github.com/nhle/helpdesk-console/internal/store"
	appsync "github.com/nhle/helpdesk-console/internal/sync"
	"github.com/nhle/helpdesk-console/internal/timer"
	"github.com/nhle/helpdesk-console/internal/ui"
	aiview "github.com/nhle/helpdesk-console/internal/ui/ai"
	"github.com/nhle/helpdesk-console/internal/ui/board"
	"github.com/nhle/helpdesk-console/internal/ui/command"
	"github.com/nhle/helpdesk-console/internal/ui/detail"
	helpview "github.com/nhle/helpdesk-console/internal/ui/help"
	"github.com/nhle/helpdesk-console/internal/ui/history"
	"github.com/nhle/helpdesk-console/internal/ui/settings"
	"github.com/nhle/helpdesk-console/internal/ui/snackbar"
	"github.com/nhle/helpdesk-console/internal/ui/timerview"
)

// refreshTimeout bounds the re-read of a task after a transition.
const refreshTimeout = 15 * time.Second

// taskRefreshedMsg carries the backend's copy of a task after a timer
// transition changed it.
type taskRefreshedMsg struct {
	task model.Task
	err  error
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewDetail
	ViewAI
	ViewHelp
	ViewCommand
	ViewSettings
	ViewHistory
)

// Options are the dependencies the root model is built from.
type Options struct {
	Store      store.Store
	Config     *model.AppConfig
	ConfigPath string

	// Token is the backend API token, possibly empty.
	Token string

	// LoadToken and SaveToken read and write the token after the
	// settings screen changes it. Either may be nil.
	LoadToken func() (string, error)
	SaveToken func(string) error

	Logger *slog.Logger
}

// Model is the root Bubble Tea model. It routes input between the views
// and the floating timer, and owns the session, the notification queue
// and the background poller.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	cfg        *model.AppConfig
	configPath string
	token      string
	loadToken  func() (string, error)
	store      store.Store
	keys       *keys.KeyMap
	logger     *slog.Logger

	queue   *notify.Queue
	session *timer.Session
	adapter *helpdesk.Adapter
	poller  *appsync.Poller

	board        board.Model
	detail       detail.Model
	timerView    timerview.Model
	snackbar     snackbar.Model
	aiView       aiview.Model
	settingsView settings.Model
	historyView  history.Model
	helpView     helpview.Model
	commandView  command.Model

	firstRunCmd      tea.Cmd
	authErrorMessage string
}

// New creates the root model. An unconfigured console starts on the
// settings screen and does not poll until it is saved.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	k := keys.DefaultKeyMap()

	queue := notify.NewQueue(
		time.Duration(cfg.Timer.NotificationTTLSec)*time.Second,
		notify.WithSink(opts.Store),
		notify.WithLogger(logger),
	)
	session := timer.NewSession(
		timer.Position{X: cfg.Timer.StartX, Y: cfg.Timer.StartY},
		cfg.Timer.ClampToViewport,
	)

	m := Model{
		currentView: ViewBoard,
		cfg:         cfg,
		configPath:  opts.ConfigPath,
		token:       opts.Token,
		loadToken:   opts.LoadToken,
		store:       opts.Store,
		keys:        k,
		logger:      logger,
		queue:       queue,
		session:     session,
		board:       board.New(opts.Store, k, cfg.User, cfg.Statuses, 80, 24),
		detail:      detail.New(opts.Store, k, 80, 24),
		snackbar:    snackbar.New(queue),
		historyView: history.New(opts.Store, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
	m.settingsView = settings.New(
		opts.ConfigPath,
		backendValidator(opts, time.Duration(cfg.Backend.TimeoutSec)*time.Second),
		opts.SaveToken,
		k, 80, 24,
	)
	m.connect()

	if !cfg.Configured() {
		m.currentView = ViewSettings
		m.firstRunCmd = m.settingsView.Open(cfg)
	}
	return m
}

// connect builds the backend-facing services from the current config.
// The session and queue survive reconnects so a running timer keeps
// counting.
func (m *Model) connect() {
	timeout := time.Duration(m.cfg.Backend.TimeoutSec) * time.Second

	m.adapter = helpdesk.NewAdapter(m.cfg.Backend.BaseURL, m.token, timeout)
	statuses := appsync.NewStatusCache(m.store, m.adapter)

	bridge := timer.NewBridge(m.session, m.adapter, statuses, m.queue,
		timer.WithRecorder(m.store),
		timer.WithStatusAliases(m.cfg.Statuses),
		timer.WithLogger(m.logger),
	)
	m.timerView = timerview.New(bridge, m.keys, m.cfg.Timer.DefaultExtraTime)
	if m.ready {
		m.timerView.SetSize(m.layout.Width, m.layout.Height)
	}

	m.poller = appsync.New(
		m.store,
		m.adapter,
		m.cfg.User,
		time.Duration(m.cfg.Backend.PollIntervalSec)*time.Second,
		m.queue,
	)

	var client *aiservice.Client
	if m.cfg.Backend.AIBaseURL != "" {
		client = aiservice.NewClient(m.cfg.Backend.AIBaseURL, timeout)
	}
	width, height := 80, 24
	if m.ready {
		width, height = m.layout.ContentWidth(), m.layout.ContentHeight()
	}
	m.aiView = aiview.New(client, m.store, m.adapter, m.keys, width, height)
}

// backendValidator backs the settings screen's connection test. A blank
// token means the stored one is kept.
func backendValidator(opts Options, timeout time.Duration) settings.Validator {
	return func(ctx context.Context, baseURL, token string) (string, error) {
		if token == "" {
			token = opts.Token
			if opts.LoadToken != nil {
				if stored, err := opts.LoadToken(); err == nil && stored != "" {
					token = stored
				}
			}
		}
		return helpdesk.NewAdapter(baseURL, token, timeout).ValidateConnection(ctx)
	}
}

// Init loads the cached board and starts polling, or opens the settings
// form on first run.
func (m Model) Init() tea.Cmd {
	if m.firstRunCmd != nil {
		return tea.Batch(m.firstRunCmd, m.board.Init(), m.snackbar.Init())
	}
	return tea.Batch(
		m.board.Init(),
		m.snackbar.Init(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.board.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.aiView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.snackbar.SetWidth(msg.Width)
		m.timerView.SetSize(msg.Width, msg.Height)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}
		return m, tea.Batch(m.board.LoadTasks(), m.poller.WaitForNextResult())

	case board.TasksLoadedMsg:
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		m.detail.SetStatuses(m.board.Statuses())
		m.syncActive()
		return m, cmd

	case board.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetStatuses(m.board.Statuses())
		cmd := m.detail.Load(msg.Task)
		return m, cmd

	case board.StartTimerMsg:
		cmd := m.timerView.Start(msg.Task)
		return m, cmd

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	case detail.ActionMsg:
		if msg.Action == "start" {
			cmd := m.timerView.Start(msg.Task)
			return m, cmd
		}
		return m, nil

	case timerview.TickMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		m.syncActive()
		return m, cmd

	case timerview.TransitionMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		m.syncActive()
		if msg.Err != nil || msg.Task.ID == 0 {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.refreshTask(msg.Task.ID))

	case taskRefreshedMsg:
		if msg.err != nil {
			m.logger.Warn("re-reading task after transition", "error", msg.err)
			return m, m.board.LoadTasks()
		}
		if t, ok := m.detail.Task(); ok && t.ID == msg.task.ID {
			m.detail.SetTask(msg.task)
		}
		return m, m.board.LoadTasks()

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd

	case history.SessionsLoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case history.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case aiview.AIPanelCloseMsg:
		m.aiView.Reset()
		m.currentView = ViewBoard
		return m, nil

	case settings.SettingsSavedMsg:
		return m, m.applySettings(msg)

	case settings.SettingsClosedMsg:
		m.currentView = m.previousView
		if m.currentView == ViewSettings {
			m.currentView = ViewBoard
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateBackground(msg)
}

// handleKey routes a key press. The order is quit, text entry, the
// timer, global shortcuts, then the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.timerView.WantsKey(msg) && (m.timerModal() || !m.textEntry()) {
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		m.syncActive()
		return m, cmd
	}

	if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
		m.currentView = m.previousView
		return m, nil
	}
	if m.textEntry() {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewBoard {
			return m, m.quit()
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		m.commandView.Reset()
		cmd := m.commandView.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		switch m.currentView {
		case ViewHelp:
			m.currentView = m.previousView
			return m, nil
		case ViewBoard:
			if m.snackbar.Active() {
				m.snackbar.Dismiss()
				return m, nil
			}
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewBoard {
			m.poller.Refresh()
			return m, m.board.LoadTasks()
		}

	case key.Matches(msg, m.keys.AI):
		if m.currentView == ViewBoard {
			return m, m.openAI()
		}

	case key.Matches(msg, m.keys.History):
		if m.currentView == ViewBoard {
			return m, m.openHistory()
		}

	case key.Matches(msg, m.keys.Settings):
		if m.currentView == ViewBoard {
			return m, m.openSettings()
		}
	}

	return m.updateActiveView(msg)
}

// textEntry reports whether the active view is taking typed input.
func (m Model) textEntry() bool {
	switch m.currentView {
	case ViewAI, ViewSettings, ViewCommand:
		return true
	case ViewBoard:
		return m.board.Searching()
	}
	return false
}

// timerModal reports whether the timer holds a dialog that blocks every
// other input.
func (m Model) timerModal() bool {
	if m.timerView.Editing() {
		return true
	}
	switch m.session.Phase() {
	case timer.PhaseExpired, timer.PhaseDone:
		return true
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewAI:
		m.aiView, cmd = m.aiView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	}

	return m, cmd
}

// updateBackground delivers internal messages (spinner and snackbar
// ticks, form events, async answers) to the active view and to the
// components that may be waiting on them while hidden.
func (m Model) updateBackground(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.snackbar, cmd = m.snackbar.Update(msg)
	cmds = append(cmds, cmd)

	if m.timerView.Editing() {
		m.timerView, cmd = m.timerView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView != ViewAI {
		m.aiView, cmd = m.aiView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView != ViewSettings {
		m.settingsView, cmd = m.settingsView.Update(msg)
		cmds = append(cmds, cmd)
	}

	m, cmd = m.updateActiveView(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// syncActive marks the timed task on the board.
func (m *Model) syncActive() {
	snap := m.session.Snapshot()
	if snap.Task == nil {
		m.board.SetActive(0, false)
		return
	}
	m.board.SetActive(snap.Task.ID, snap.Running)
}

// refreshTask re-reads a task from the backend after a transition and
// writes it through to the cache.
func (m Model) refreshTask(id int) tea.Cmd {
	a := m.adapter
	s := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		task, err := a.GetTask(ctx, id)
		if err != nil {
			return taskRefreshedMsg{err: err}
		}
		if err := s.UpsertTask(ctx, task); err != nil {
			return taskRefreshedMsg{err: err}
		}
		return taskRefreshedMsg{task: task}
	}
}

func (m *Model) openAI() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewAI
	return tea.Batch(m.aiView.Focus(), m.aiView.LoadSuggestions())
}

func (m *Model) openHistory() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewHistory
	return m.historyView.Load()
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Open(m.cfg)
}

// applySettings swaps in a saved configuration and reconnects.
func (m *Model) applySettings(msg settings.SettingsSavedMsg) tea.Cmd {
	m.cfg = msg.Config
	if msg.TokenChanged && m.loadToken != nil {
		token, err := m.loadToken()
		if err != nil {
			m.logger.Warn("reading API token", "error", err)
		} else {
			m.token = token
		}
	}

	m.poller.Stop()
	m.connect()
	m.board.SetUser(m.cfg.User)
	m.authErrorMessage = ""
	m.currentView = ViewBoard
	m.queue.Notify(model.SeverityInfo, "Settings saved")

	return tea.Batch(m.board.LoadTasks(), m.poller.Start())
}

// quit abandons any running session and stops polling.
func (m *Model) quit() tea.Cmd {
	m.timerView.Stop()
	m.poller.Stop()
	return tea.Quit
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	switch cmd {
	case command.Refresh:
		m.poller.Refresh()
		return m.board.LoadTasks()
	case command.Board:
		m.currentView = ViewBoard
		return m.board.LoadTasks()
	case command.History:
		return m.openHistory()
	case command.AI:
		return m.openAI()
	case command.Settings:
		return m.openSettings()
	case command.StopTimer:
		m.timerView.Stop()
		m.syncActive()
		return nil
	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case command.Quit:
		return m.quit()
	default:
		return nil
	}
}

// View renders the full terminal UI with the timer floating on top.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.syncStatus())
	content := lipgloss.NewStyle().
		Height(m.layout.ContentHeight()).
		MaxHeight(m.layout.ContentHeight()).
		Render(m.renderContent())
	statusBar := m.layout.RenderStatusBar(m.keyHints())
	if m.snackbar.Active() {
		statusBar = m.snackbar.View()
	}

	frame := m.layout.RenderWithFrame(header, content, statusBar)

	if m.timerView.Visible() {
		pos := m.timerView.Position()
		frame = ui.PlaceOverlay(pos.X, pos.Y, m.timerView.View(), frame)
	}
	if dialog := m.timerView.Dialog(); dialog != "" {
		x := max((m.layout.Width-lipgloss.Width(dialog))/2, 0)
		y := max((m.layout.Height-lipgloss.Height(dialog))/2, 0)
		frame = ui.PlaceOverlay(x, y, dialog, frame)
	}
	return frame
}

func (m Model) headerTitle() string {
	if m.cfg.User.Email != "" {
		return fmt.Sprintf("Help Desk · %s (%s)", m.cfg.User.Email, m.cfg.User.Role)
	}
	return "Help Desk"
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.board.View()
	case ViewDetail:
		return m.detail.View()
	case ViewAI:
		return m.aiView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHistory:
		return m.historyView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the sync state.
func (m Model) syncStatus() string {
	st := m.poller.Status()
	switch st.State {
	case appsync.SyncRunning:
		return "syncing"
	case appsync.SyncError:
		return "⚠ backend unreachable"
	}
	if st.LastSync.IsZero() {
		return "not synced"
	}
	return "synced " + st.LastSync.Format("15:04:05")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.authErrorMessage != "" && m.currentView == ViewBoard {
		return m.authErrorMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | s start timer | j/k scroll"
	case ViewAI:
		return "enter ask | tab period | ctrl+s suggestion | esc close"
	case ViewSettings:
		return "enter next | shift+tab back | esc cancel"
	case ViewHistory:
		return "j/k move | esc back"
	default:
		if m.session.Phase() == timer.PhaseRunning {
			return "space pause | x stop | drag the timer with the mouse | q quit"
		}
		return "q quit | ? help | s start timer | / search | tab column | v show done"
	}
}
