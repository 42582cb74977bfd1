package detail

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-console/internal/keys"
	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/testutil"
	"github.com/nhle/helpdesk-console/internal/timer"
)

func TestDetail_LoadsProjectAndSessions(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.SyncProjects(ctx, []model.Project{{ID: 1, Name: "Office move", FetchedAt: start}}))
	require.NoError(t, s.RecordSession(ctx, model.SessionRecord{
		TaskID: 1, TaskTitle: "Reset VPN", AllottedSeconds: 1800, ExtraSeconds: 600,
		Progress: 133, Outcome: model.OutcomeCompleted,
		StartedAt: start, EndedAt: start.Add(40 * time.Minute),
	}))

	m := New(s, keys.DefaultKeyMap(), 100, 40)
	m.SetStatuses(timer.NewStatusSet(testutil.Statuses(), model.DefaultStatusAliases()))

	task := testutil.Task(1, "Reset VPN")
	task.Description = "User cannot reach the intranet"
	cmd := m.Load(task)
	assert.Contains(t, m.View(), "Loading")

	msg, ok := cmd().(DetailLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	require.NotNil(t, msg.Project)
	require.Len(t, msg.Sessions, 1)

	m, _ = m.Update(msg)
	view := m.View()
	assert.Contains(t, view, "#1 Reset VPN")
	assert.Contains(t, view, "À faire")
	assert.Contains(t, view, "Office move")
	assert.Contains(t, view, "00:30:00")
	assert.Contains(t, view, "+00:10:00")
	assert.Contains(t, view, "User cannot reach the intranet")
}

func TestDetail_FlagsUnstartableDuration(t *testing.T) {
	m := New(testutil.NewTestStore(t), keys.DefaultKeyMap(), 100, 40)
	task := testutil.Task(2, "Swap monitor")
	task.Duration = "soon"

	m, _ = m.Update(DetailLoadedMsg{Task: task})
	assert.Contains(t, m.View(), "not startable")
	assert.Contains(t, m.View(), "Never timed")
}

func TestDetail_Keys(t *testing.T) {
	m := New(testutil.NewTestStore(t), keys.DefaultKeyMap(), 100, 40)
	m, _ = m.Update(DetailLoadedMsg{Task: testutil.Task(3, "Install printer")})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	require.NotNil(t, cmd)
	action, ok := cmd().(ActionMsg)
	require.True(t, ok)
	assert.Equal(t, "start", action.Action)
	assert.Equal(t, 3, action.Task.ID)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, BackMsg{}, cmd())
}
