package snackbar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/notify"
)

func TestSnackbar_ShowsHeadAndExpires(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	q := notify.NewQueue(6*time.Second, notify.WithClock(func() time.Time { return now }))
	m := New(q)

	assert.Empty(t, m.View())

	q.Notify(model.SeverityInfo, "Timer started")
	q.Notify(model.SeverityError, "Update failed")

	assert.Contains(t, m.View(), "Timer started (+1)")

	// Rendering alone does not start the display clock.
	now = now.Add(time.Minute)
	assert.Contains(t, m.View(), "Timer started")
	m, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Timer started")

	now = now.Add(5 * time.Second)
	m, _ = m.Update(tickMsg{})
	assert.Contains(t, m.View(), "Timer started")

	now = now.Add(time.Second)
	m, _ = m.Update(tickMsg{})
	assert.Contains(t, m.View(), "Update failed")
	assert.NotContains(t, m.View(), "+1")
}

func TestSnackbar_DismissAndTruncate(t *testing.T) {
	q := notify.NewQueue(time.Minute)
	m := New(q)
	m.SetWidth(14)

	q.Notify(model.SeverityWarning, "a rather long message that will not fit")
	assert.Contains(t, m.View(), "…")

	m.Dismiss()
	assert.False(t, m.Active())
	assert.Empty(t, m.View())
}
