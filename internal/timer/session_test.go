package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-console/internal/model"
)

func newTask(id int, duration string) model.Task {
	return model.Task{ID: id, Title: "Reset VPN token", Duration: duration, StatusID: 2}
}

// runTicks ticks the session n times under its current generation.
func runTicks(s *Session, n int) []Event {
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, s.Tick(s.Generation()))
	}
	return events
}

func TestSession_StartOverwritesPriorState(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:00:10")))
	runTicks(s, 10)
	require.Equal(t, PhaseExpired, s.Phase())
	require.NoError(t, s.Extend(newTask(1, "00:00:10"), 5))

	require.NoError(t, s.Start(newTask(2, "00:10:00")))

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Task.ID)
	assert.Equal(t, 600, snap.Remaining)
	assert.Equal(t, 600, snap.Allotted)
	assert.Zero(t, snap.Extra)
	assert.True(t, snap.Running)
	assert.False(t, snap.UsedExtra)
	assert.Equal(t, PhaseRunning, snap.Phase)
}

func TestSession_StartRejectsBadDuration(t *testing.T) {
	s := NewSession(Position{}, false)

	err := s.Start(newTask(1, "soon"))
	assert.ErrorIs(t, err, ErrInvalidDuration)

	err = s.Start(newTask(1, "00:00:00"))
	assert.ErrorIs(t, err, ErrZeroDuration)

	_, ok := s.Remaining()
	assert.False(t, ok)
}

func TestSession_ToggleWithoutTaskIsNoop(t *testing.T) {
	s := NewSession(Position{}, false)
	gen := s.Generation()
	assert.False(t, s.Toggle())
	assert.Equal(t, gen, s.Generation())
	assert.False(t, s.Snapshot().Running)
}

func TestSession_TogglePausesAndResumes(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:01:00")))

	assert.False(t, s.Toggle())
	assert.False(t, s.Ticking())
	assert.Equal(t, EventNone, s.Tick(s.Generation()))
	rem, _ := s.Remaining()
	assert.Equal(t, 60, rem)

	assert.True(t, s.Toggle())
	assert.Equal(t, EventTick, s.Tick(s.Generation()))
	rem, _ = s.Remaining()
	assert.Equal(t, 59, rem)
}

func TestSession_StaleTickIgnored(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:01:00")))
	stale := s.Generation()

	s.Toggle()
	s.Toggle()

	assert.Equal(t, EventNone, s.Tick(stale))
	rem, _ := s.Remaining()
	assert.Equal(t, 60, rem)
}

func TestSession_TickStopsAtZero(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:00:03")))

	events := runTicks(s, 5)
	assert.Equal(t, []Event{EventTick, EventTick, EventExpired, EventNone, EventNone}, events)

	snap := s.Snapshot()
	assert.Zero(t, snap.Remaining)
	assert.False(t, snap.Running)
	assert.Equal(t, PhaseExpired, snap.Phase)
	assert.True(t, snap.HasTimer)
}

func TestSession_WarningFiresOnceAt300(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:05:02")))

	assert.Equal(t, EventTick, s.Tick(s.Generation()))
	rem, _ := s.Remaining()
	require.Equal(t, 301, rem)

	assert.Equal(t, EventWarning, s.Tick(s.Generation()))
	rem, _ = s.Remaining()
	assert.Equal(t, 300, rem)

	warnings := 0
	for _, ev := range runTicks(s, 300) {
		if ev == EventWarning {
			warnings++
		}
	}
	assert.Zero(t, warnings)
	assert.Equal(t, PhaseExpired, s.Phase())
}

func TestSession_NoWarningWhenStartingBelowThreshold(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:05:00")))
	for _, ev := range runTicks(s, 300) {
		assert.NotEqual(t, EventWarning, ev)
	}
}

func TestSession_WarningOncePerSessionAcrossExtension(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:05:01")))
	assert.Equal(t, EventWarning, s.Tick(s.Generation()))
	runTicks(s, 300)
	require.Equal(t, PhaseExpired, s.Phase())

	require.NoError(t, s.Extend(newTask(1, "00:05:01"), 400))
	for _, ev := range runTicks(s, 400) {
		assert.NotEqual(t, EventWarning, ev)
	}
}

func TestSession_ShortBudgetWarnsDuringExtension(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:04:00")))
	for _, ev := range runTicks(s, 240) {
		assert.NotEqual(t, EventWarning, ev)
	}
	require.Equal(t, PhaseExpired, s.Phase())

	require.NoError(t, s.Extend(newTask(1, "00:04:00"), 600))

	var warnedAt []int
	for i := 0; i < 600; i++ {
		if s.Tick(s.Generation()) == EventWarning {
			rem, _ := s.Remaining()
			warnedAt = append(warnedAt, rem)
		}
	}
	assert.Equal(t, []int{300}, warnedAt)
	assert.Equal(t, PhaseExpired, s.Phase())
}

func TestSession_ExtendRestartsFromExtraOnly(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:10:00")))
	runTicks(s, 600)
	require.Equal(t, PhaseExpired, s.Phase())

	updated := newTask(1, "00:10:00")
	updated.Progress = 150
	require.NoError(t, s.Extend(updated, 300))

	snap := s.Snapshot()
	assert.Equal(t, 300, snap.Remaining)
	assert.Equal(t, 600, snap.Allotted)
	assert.Equal(t, 300, snap.Extra)
	assert.True(t, snap.UsedExtra)
	assert.True(t, snap.Running)
	assert.Equal(t, 150, snap.Task.Progress)

	runTicks(s, 300)
	assert.ErrorIs(t, s.Extend(updated, 60), ErrExtraTimeUsed)
}

func TestSession_ExtendRequiresExpired(t *testing.T) {
	s := NewSession(Position{}, false)
	assert.ErrorIs(t, s.Extend(newTask(1, "00:01:00"), 60), ErrNoActiveTimer)

	require.NoError(t, s.Start(newTask(1, "00:01:00")))
	assert.ErrorIs(t, s.Extend(newTask(1, "00:01:00"), 60), ErrNotExpired)
	assert.ErrorIs(t, s.Extend(newTask(1, "00:01:00"), 0), ErrZeroDuration)
}

func TestSession_CompleteWithoutExtraShowsDone(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:00:01")))
	runTicks(s, 1)

	congratulate, err := s.Complete()
	require.NoError(t, err)
	assert.True(t, congratulate)
	assert.Equal(t, PhaseDone, s.Phase())
}

func TestSession_CompleteAfterExtraClears(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:00:01")))
	runTicks(s, 1)
	require.NoError(t, s.Extend(newTask(1, "00:00:01"), 1))
	runTicks(s, 1)

	congratulate, err := s.Complete()
	require.NoError(t, err)
	assert.False(t, congratulate)
	assert.Equal(t, PhaseIdle, s.Phase())
	_, ok := s.Task()
	assert.False(t, ok)
}

func TestSession_StopAndClearResetsDefaults(t *testing.T) {
	s := NewSession(Position{X: 4, Y: 4}, false)
	require.NoError(t, s.Start(newTask(1, "00:00:01")))
	runTicks(s, 1)
	_, err := s.Complete()
	require.NoError(t, err)
	gen := s.Generation()

	s.StopAndClear()

	snap := s.Snapshot()
	assert.Nil(t, snap.Task)
	assert.False(t, snap.HasTimer)
	assert.False(t, snap.Running)
	assert.False(t, snap.UsedExtra)
	assert.Equal(t, PhaseIdle, snap.Phase)
	_, ok := s.Remaining()
	assert.False(t, ok)
	assert.Equal(t, "00:00:00", s.FormatRemaining())
	assert.Greater(t, s.Generation(), gen)
	assert.Equal(t, Position{X: 4, Y: 4}, s.Position())
}

func TestSession_ClearCancelsPendingTick(t *testing.T) {
	s := NewSession(Position{}, false)
	require.NoError(t, s.Start(newTask(1, "00:01:00")))
	pending := s.Generation()

	s.StopAndClear()
	require.NoError(t, s.Start(newTask(2, "00:01:00")))

	assert.Equal(t, EventNone, s.Tick(pending))
	rem, _ := s.Remaining()
	assert.Equal(t, 60, rem)
}

func TestSession_FormatRemaining(t *testing.T) {
	s := NewSession(Position{}, false)
	assert.Equal(t, "00:00:00", s.FormatRemaining())
	require.NoError(t, s.Start(newTask(1, "01:02:03")))
	assert.Equal(t, "01:02:03", s.FormatRemaining())
}

func TestSession_GrabOnlyOnWidget(t *testing.T) {
	s := NewSession(Position{X: 20, Y: 20}, false)
	s.SetWidgetSize(20, 5)

	assert.False(t, s.Grab(Position{X: 5, Y: 5}))
	assert.False(t, s.DragTo(Position{X: 50, Y: 50}))

	require.True(t, s.Grab(Position{X: 30, Y: 22}))
	assert.True(t, s.DragTo(Position{X: 100, Y: 100}))
	assert.Equal(t, Position{X: 90, Y: 98}, s.Position())
	s.Release()
	assert.False(t, s.Dragging())
}

func TestSnapshot_Elapsed(t *testing.T) {
	s := NewSession(Position{}, false)
	assert.Zero(t, s.Snapshot().Elapsed())

	require.NoError(t, s.Start(newTask(1, "00:00:10")))
	runTicks(s, 5)
	assert.InDelta(t, 0.5, s.Snapshot().Elapsed(), 0.001)
}
