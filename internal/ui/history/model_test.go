package history

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
)

func TestHistory_LoadsNewestFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordSession(ctx, model.SessionRecord{
		TaskID: 1, TaskTitle: "Reset VPN", AllottedSeconds: 600, Progress: 100,
		Outcome: model.OutcomeCompleted, StartedAt: start, EndedAt: start.Add(10 * time.Minute),
	}))
	require.NoError(t, s.RecordSession(ctx, model.SessionRecord{
		TaskID: 2, TaskTitle: "Swap monitor", AllottedSeconds: 1200, ExtraSeconds: 300,
		Progress: 125, Outcome: model.OutcomeCompleted,
		StartedAt: start.Add(time.Hour), EndedAt: start.Add(time.Hour + 25*time.Minute),
	}))

	m := New(s, keys.DefaultKeyMap(), 120, 30)
	m, _ = m.Update(m.Load()())

	require.Len(t, m.sessions, 2)
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "#2 Swap monitor", rows[0][1])
	assert.Equal(t, "00:05:00", rows[0][3])
	assert.Equal(t, "00:25:00", rows[0][4])
	assert.Equal(t, "125", rows[0][6])
	assert.Equal(t, "-", rows[1][3])
	assert.Contains(t, m.View(), "Timer history (2)")
}

func TestHistory_EmptyAndBack(t *testing.T) {
	m := New(testutil.NewTestStore(t), keys.DefaultKeyMap(), 120, 30)
	m, _ = m.Update(m.Load()())
	assert.Contains(t, m.View(), "No timer sessions recorded yet.")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, BackMsg{}, cmd())
}
