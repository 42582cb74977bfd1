package timerview

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/notify"
	"github.com/nhle/helpdesk-console/internal/testutil"
	"github.com/nhle/helpdesk-console/internal/timer"
)

type recordingUpdater struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (r *recordingUpdater) UpdateTask(_ context.Context, task model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return nil
}

type staticStatuses []model.Status

func (s staticStatuses) Statuses(context.Context) ([]model.Status, error) {
	return s, nil
}

func newWidget(t *testing.T) (Model, *timer.Session, *recordingUpdater) {
	t.Helper()
	session := timer.NewSession(timer.Position{X: 2, Y: 1}, true)
	updater := &recordingUpdater{}
	bridge := timer.NewBridge(session, updater, staticStatuses(testutil.Statuses()), notify.NewQueue(time.Second))
	m := New(bridge, keys.DefaultKeyMap(), "00:10:00")
	m.SetSize(120, 40)
	return m, session, updater
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// start runs the start transition synchronously.
func start(t *testing.T, m Model, task model.Task) (Model, tea.Cmd) {
	t.Helper()
	cmd := m.Start(task)
	require.NotNil(t, cmd)
	msg, ok := cmd().(TransitionMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	return m.Update(msg)
}

func TestWidget_StartSchedulesTick(t *testing.T) {
	m, session, updater := newWidget(t)
	task := testutil.Task(1, "Reset VPN")

	m, cmd := start(t, m, task)

	assert.NotNil(t, cmd, "a tick is scheduled")
	assert.True(t, session.Ticking())
	require.Len(t, updater.tasks, 1)
	assert.Equal(t, 2, updater.tasks[0].StatusID)
	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "00:30:00")
}

func TestWidget_TickAdvancesAndStaleTickIsDropped(t *testing.T) {
	m, session, _ := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))

	gen := session.Generation()
	m, cmd := m.Update(TickMsg{Gen: gen})
	assert.NotNil(t, cmd)
	rem, _ := session.Remaining()
	assert.Equal(t, 30*60-1, rem)

	m, cmd = m.Update(TickMsg{Gen: gen - 1})
	assert.Nil(t, cmd)
	rem, _ = session.Remaining()
	assert.Equal(t, 30*60-1, rem)
	_ = m
}

func TestWidget_SpacePausesAndResumes(t *testing.T) {
	m, session, _ := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))
	before := session.Generation()

	require.True(t, m.WantsKey(runeKey(' ')))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, cmd, "paused timers do not tick")
	assert.False(t, session.Ticking())

	m, _ = m.Update(TickMsg{Gen: before})
	rem, _ := session.Remaining()
	assert.Equal(t, 30*60, rem)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.NotNil(t, cmd)
	assert.True(t, session.Ticking())
}

func TestWidget_DragMovesWidget(t *testing.T) {
	m, session, _ := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))

	m, _ = m.Update(tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, session.Dragging())

	m, _ = m.Update(tea.MouseMsg{X: 13, Y: 7, Action: tea.MouseActionMotion})
	assert.Equal(t, timer.Position{X: 12, Y: 6}, m.Position())

	m, _ = m.Update(tea.MouseMsg{X: 13, Y: 7, Action: tea.MouseActionRelease})
	assert.False(t, session.Dragging())

	m, _ = m.Update(tea.MouseMsg{X: 40, Y: 20, Action: tea.MouseActionMotion})
	assert.Equal(t, timer.Position{X: 12, Y: 6}, m.Position(), "motion after release is ignored")
}

func TestWidget_PressOutsideDoesNotGrab(t *testing.T) {
	m, session, _ := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))

	_, _ = m.Update(tea.MouseMsg{X: 100, Y: 30, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, session.Dragging())
}

func expire(m Model, s *timer.Session) Model {
	for s.Ticking() {
		m, _ = m.Update(TickMsg{Gen: s.Generation()})
	}
	return m
}

func TestWidget_FinishShowsCongratulations(t *testing.T) {
	m, session, updater := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))
	m = expire(m, session)

	assert.Equal(t, timer.PhaseExpired, session.Phase())
	assert.Contains(t, m.Dialog(), "Time is up")
	assert.True(t, m.WantsKey(runeKey('j')), "expired dialog is modal")

	m, cmd := m.Update(runeKey('f'))
	require.NotNil(t, cmd)
	assert.Contains(t, m.Dialog(), "Updating task")

	msg, ok := cmd().(TransitionMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, OpFinish, msg.Op)
	assert.Equal(t, 100, msg.Completion.Progress)
	assert.Equal(t, 3, updater.tasks[len(updater.tasks)-1].StatusID)

	m, _ = m.Update(msg)
	assert.Contains(t, m.Dialog(), "Congratulations")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Visible())
	assert.Empty(t, m.Dialog())
}

func TestWidget_ExtraTimeOpensForm(t *testing.T) {
	m, session, _ := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))
	m = expire(m, session)

	m, _ = m.Update(runeKey('e'))
	assert.True(t, m.Editing())
	assert.Equal(t, "00:10:00", m.fb.extra)
	assert.NotEmpty(t, m.Dialog())
}

func TestWidget_ExtraTimeFormCompletesExtension(t *testing.T) {
	m, session, updater := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))
	m = expire(m, session)

	m, _ = m.Update(runeKey('e'))
	require.True(t, m.Editing())

	m.fb.extra = " 00:05:00 "
	m.form.State = huh.StateCompleted
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.Editing())
	assert.Contains(t, m.Dialog(), "Updating task")

	msg, ok := cmd().(TransitionMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, OpExtend, msg.Op)
	assert.Equal(t, 2, updater.tasks[len(updater.tasks)-1].StatusID)

	m, cmd = m.Update(msg)
	assert.NotNil(t, cmd, "the countdown resumes ticking")
	assert.True(t, session.Ticking())
	rem, _ := session.Remaining()
	assert.Equal(t, 5*60, rem)
	assert.Contains(t, m.View(), "+extra")
	assert.NotContains(t, m.Dialog(), "[e]")

	m = expire(m, session)
	assert.NotContains(t, m.Dialog(), "[e]")
	m, _ = m.Update(runeKey('e'))
	assert.False(t, m.Editing(), "extra time is granted once")
}

func TestWidget_EscLeavesExtraTimeForm(t *testing.T) {
	m, session, updater := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))
	m = expire(m, session)

	m, _ = m.Update(runeKey('e'))
	require.True(t, m.Editing())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, m.Editing())
	assert.Equal(t, timer.PhaseExpired, session.Phase())
	assert.Contains(t, m.Dialog(), "[e] Add extra time")

	m, cmd = m.Update(runeKey('f'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(TransitionMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, OpFinish, msg.Op)
	assert.Equal(t, 3, updater.tasks[len(updater.tasks)-1].StatusID)

	m, _ = m.Update(msg)
	assert.Equal(t, timer.PhaseDone, session.Phase())
}

func TestWidget_StopClearsSession(t *testing.T) {
	m, session, _ := newWidget(t)
	m, _ = start(t, m, testutil.Task(1, "Reset VPN"))

	m, _ = m.Update(runeKey('x'))
	assert.Equal(t, timer.PhaseIdle, session.Phase())
	assert.False(t, m.Visible())
	assert.False(t, m.WantsKey(runeKey('x')))
}

func TestValidateExtra(t *testing.T) {
	assert.NoError(t, validateExtra(" 00:05:00 "))
	assert.Error(t, validateExtra("5 minutes"))
	assert.Error(t, validateExtra("00:00:00"))
}
