package board

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/theme"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// StalenessThreshold is how old FetchedAt can be before a task is
// marked stale.
var StalenessThreshold = 5 * time.Minute

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
	Kind model.StatusKind
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{i.Task.Priority, i.Task.Duration, fmt.Sprintf("%d%%", i.Task.Progress)}
	return strings.Join(parts, " | ")
}

// activeTimer is the task the floating timer is bound to.
type activeTimer struct {
	taskID  int
	running bool
}

// ItemDelegate implements list.ItemDelegate for rendering board rows.
type ItemDelegate struct {
	// active is shared by reference with the board Model so updates
	// are visible without rebuilding the list.
	active *activeTimer
	now    func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single board row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	task := ti.Task

	marker := "●"
	if d.active != nil && d.active.taskID == task.ID {
		if d.active.running {
			marker = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("▶")
		} else {
			marker = lipgloss.NewStyle().Foreground(theme.ColorYellow).Render("⏸")
		}
	}

	priority := task.Priority
	if priority == "" {
		priority = "-"
	}
	priBadge := theme.PriorityStyle(task.Priority).Render(priority)

	duration := task.Duration
	if _, err := timer.ParsePositiveHMS(duration); err != nil {
		duration = lipgloss.NewStyle().Foreground(theme.ColorRed).Render("--:--:--")
	}

	progress := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf("%3d%%", task.Progress))

	stale := ""
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	if !task.FetchedAt.IsZero() && now().Sub(task.FetchedAt) > StalenessThreshold {
		stale = lipgloss.NewStyle().Foreground(theme.ColorGray).Render(" ◌")
	}

	line := fmt.Sprintf(
		"%s #%-4d %s %s %s  %s%s",
		marker, task.ID, duration, progress, priBadge, task.Title, stale,
	)

	if ti.Kind == model.StatusDone {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
