package snackbar

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/nhle/helpdesk-console/internal/notify"
	"github.com/nhle/helpdesk-console/internal/theme"
)

// pollInterval is how often the head of the queue is checked for expiry.
const pollInterval = 500 * time.Millisecond

type tickMsg struct{}

// Model renders the head of the notification queue.
type Model struct {
	queue *notify.Queue
	width int
}

// New creates a snackbar over q.
func New(q *notify.Queue) Model {
	return Model{queue: q}
}

// Init starts the expiry poll.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update drops the displayed message once its time is up and starts the
// clock on whichever message is now at the head.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(tickMsg); ok {
		m.queue.Expire()
		m.queue.Current()
		return m, tick()
	}
	return m, nil
}

// Dismiss hides the displayed message now.
func (m Model) Dismiss() {
	m.queue.Dismiss()
}

// Active reports whether a message is queued.
func (m Model) Active() bool {
	return m.queue.Len() > 0
}

// View renders the current message, or "" when the queue is empty.
func (m Model) View() string {
	n, ok := m.queue.Peek()
	if !ok {
		return ""
	}

	text := n.Message
	if more := m.queue.Len() - 1; more > 0 {
		text = fmt.Sprintf("%s (+%d)", text, more)
	}
	if m.width > 4 {
		text = ansi.Truncate(text, m.width-4, "…")
	}
	return theme.SeverityStyle(n.Severity).Render(text)
}

// SetWidth limits the rendered width.
func (m *Model) SetWidth(width int) {
	m.width = width
}
