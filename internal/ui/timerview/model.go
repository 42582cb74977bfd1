// Package timerview renders the floating countdown widget and its
// dialogs, and drives the one-second tick.
package timerview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// widgetWidth is the inner width of the floating widget.
const widgetWidth = 26

// transitionTimeout bounds a single backend transition.
const transitionTimeout = 30 * time.Second

// TickMsg is the one-second heartbeat. Gen ties it to the schedule that
// produced it.
type TickMsg struct {
	Gen uint64
}

// Op names a status transition.
type Op string

const (
	OpStart  Op = "start"
	OpFinish Op = "finish"
	OpExtend Op = "extend"
)

// TransitionMsg reports the outcome of a bridge transition.
type TransitionMsg struct {
	Op         Op
	Action     timer.Action
	Task       model.Task
	Completion timer.Completion
	Err        error
}

// extraBindings holds the extra-time form value on the heap so huh's
// Value pointer survives model copies.
type extraBindings struct {
	extra string
}

// Model is the floating timer widget.
type Model struct {
	bridge       *timer.Bridge
	session      *timer.Session
	keys         *keys.KeyMap
	bar          progress.Model
	form         *huh.Form
	fb           *extraBindings
	defaultExtra string
	pending      bool
	width        int
	height       int
}

// New creates the widget for the session driven by b. defaultExtra
// pre-fills the extra-time form.
func New(b *timer.Bridge, k *keys.KeyMap, defaultExtra string) Model {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(widgetWidth),
		progress.WithoutPercentage(),
	)
	m := Model{
		bridge:       b,
		session:      b.Session(),
		keys:         k,
		bar:          bar,
		fb:           &extraBindings{},
		defaultExtra: defaultExtra,
	}
	w := m.renderWidget()
	m.session.SetWidgetSize(lipgloss.Width(w), lipgloss.Height(w))
	return m
}

// Start starts the timer on task, or pauses/resumes it when task is the
// one already running.
func (m *Model) Start(task model.Task) tea.Cmd {
	m.pending = true
	b := m.bridge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), transitionTimeout)
		defer cancel()

		action, err := b.StartOrToggle(ctx, task)
		if t, ok := b.Session().Task(); ok && err == nil {
			task = t
		}
		return TransitionMsg{Op: OpStart, Action: action, Task: task, Err: err}
	}
}

// Stop abandons the current session, if any.
func (m *Model) Stop() {
	m.form = nil
	m.bridge.Abandon(context.Background())
}

// Update handles ticks, transitions, keys and mouse drags.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if m.bridge.Tick(msg.Gen) == timer.EventNone {
			return m, nil
		}
		return m, m.scheduleTick()

	case TransitionMsg:
		m.pending = false
		if msg.Err != nil {
			return m, nil
		}
		return m, m.scheduleTick()

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// scheduleTick arms the next tick for the current generation. Every
// transition bumps the generation, so an older pending tick is dropped
// when it arrives.
func (m Model) scheduleTick() tea.Cmd {
	if !m.session.Ticking() {
		return nil
	}
	gen := m.session.Generation()
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if m.session.Phase() == timer.PhaseIdle {
		return m
	}
	p := timer.Position{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.session.Grab(p)
		}
	case tea.MouseActionMotion:
		if m.session.Dragging() {
			m.session.DragTo(p)
		}
	case tea.MouseActionRelease:
		m.session.Release()
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	snap := m.session.Snapshot()

	switch snap.Phase {
	case timer.PhaseDone:
		if key.Matches(msg, m.keys.Select, m.keys.Back) {
			m.bridge.Dismiss()
		}
		return m, nil

	case timer.PhaseExpired:
		if m.pending {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Finish):
			m.pending = true
			return m, m.finish()
		case key.Matches(msg, m.keys.ExtraTime):
			if snap.UsedExtra {
				return m, nil
			}
			return m, m.openExtraForm()
		case key.Matches(msg, m.keys.Abandon):
			m.Stop()
		}
		return m, nil

	case timer.PhaseRunning:
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.session.Toggle()
			return m, m.scheduleTick()
		case key.Matches(msg, m.keys.Abandon):
			m.Stop()
		}
	}
	return m, nil
}

func (m Model) finish() tea.Cmd {
	b := m.bridge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), transitionTimeout)
		defer cancel()

		c, err := b.FinishNow(ctx)
		return TransitionMsg{Op: OpFinish, Task: c.Task, Completion: c, Err: err}
	}
}

func (m Model) extend(input string) tea.Cmd {
	b := m.bridge
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), transitionTimeout)
		defer cancel()

		_, err := b.AddExtraTime(ctx, input)
		task, _ := b.Session().Task()
		return TransitionMsg{Op: OpExtend, Task: task, Err: err}
	}
}

func (m *Model) openExtraForm() tea.Cmd {
	m.fb.extra = m.defaultExtra
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Extra time").
				Description("HH:MM:SS, granted once per session").
				Placeholder("00:10:00").
				Value(&m.fb.extra).
				Validate(validateExtra),
		),
	).WithWidth(widgetWidth + 10).WithShowHelp(false)
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	// esc drops back to the expired dialog; huh only aborts on ctrl+c,
	// which the app reserves for quitting.
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		m.form = nil
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.pending = true
		return m, m.extend(strings.TrimSpace(m.fb.extra))
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func validateExtra(s string) error {
	_, err := timer.ParsePositiveHMS(strings.TrimSpace(s))
	return err
}

// WantsKey reports whether msg belongs to the timer rather than the
// view underneath. The expired and done dialogs are modal.
func (m Model) WantsKey(msg tea.KeyMsg) bool {
	if m.form != nil {
		return true
	}
	switch m.session.Phase() {
	case timer.PhaseDone, timer.PhaseExpired:
		return true
	case timer.PhaseRunning:
		return key.Matches(msg, m.keys.Pause, m.keys.Abandon)
	default:
		return false
	}
}

// Visible reports whether the widget should be drawn.
func (m Model) Visible() bool {
	return m.session.Phase() != timer.PhaseIdle
}

// Editing reports whether the extra-time form is open.
func (m Model) Editing() bool {
	return m.form != nil
}

// Position returns where the widget sits on screen.
func (m Model) Position() timer.Position {
	return m.session.Position()
}

// View renders the floating widget, or "" when idle.
func (m Model) View() string {
	if !m.Visible() {
		return ""
	}
	return m.renderWidget()
}

func (m Model) renderWidget() string {
	snap := m.session.Snapshot()

	title := "No task"
	if snap.Task != nil {
		title = snap.Task.Title
	}
	title = ansi.Truncate(title, widgetWidth-2, "…")

	var state string
	switch {
	case snap.Phase == timer.PhaseExpired:
		state = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("time is up")
	case snap.Phase == timer.PhaseDone:
		state = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("done")
	case snap.Running:
		state = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("▶ running")
	default:
		state = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("⏸ paused")
	}
	if snap.UsedExtra {
		state += theme.DimmedStyle.Render(" +extra")
	}

	remaining := theme.CountdownStyle(snap.Remaining, timer.WarningThreshold, snap.Running).
		Render(timer.FormatHMS(snap.Remaining))

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("⏱ " + title),
		remaining + "  " + state,
		m.bar.ViewAs(snap.Elapsed()),
		theme.HelpStyle.Render("space pause · x stop"),
	}

	style := theme.TimerStyle
	if snap.Dragging {
		style = theme.TimerDraggingStyle
	}
	return style.Width(widgetWidth + 2).Render(strings.Join(lines, "\n"))
}

// Dialog renders the modal for the current phase, or "" when none is
// due.
func (m Model) Dialog() string {
	if m.form != nil {
		return theme.DialogStyle.Render(m.form.View())
	}

	snap := m.session.Snapshot()
	if snap.Task == nil {
		return ""
	}
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	switch snap.Phase {
	case timer.PhaseExpired:
		lines := []string{
			heading.Render(fmt.Sprintf("Time is up for %q", snap.Task.Title)),
			"",
		}
		if m.pending {
			lines = append(lines, theme.DimmedStyle.Render("Updating task..."))
			return theme.DialogStyle.Render(strings.Join(lines, "\n"))
		}
		lines = append(lines, "[f] Finish now")
		if !snap.UsedExtra {
			lines = append(lines, "[e] Add extra time")
		}
		lines = append(lines, "[x] Stop timer")
		return theme.DialogStyle.Render(strings.Join(lines, "\n"))

	case timer.PhaseDone:
		lines := []string{
			heading.Render("Congratulations!"),
			"",
			fmt.Sprintf("%q was finished within its allotted time.", snap.Task.Title),
			"",
			theme.HelpStyle.Render("enter to close"),
		}
		return theme.DialogStyle.
			BorderForeground(theme.ColorGreen).
			Render(strings.Join(lines, "\n"))
	}
	return ""
}

// SetSize records the terminal size so drags stay on screen.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.session.SetViewport(width, height)
}
