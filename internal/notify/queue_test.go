package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-console/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type memSink struct {
	saved []model.Notification
	err   error
}

func (m *memSink) CreateNotification(_ context.Context, n model.Notification) error {
	m.saved = append(m.saved, n)
	return m.err
}

func TestQueue_FIFOWithAutoDismiss(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	q := NewQueue(0, WithClock(clock.now))

	q.Notify(model.SeverityInfo, "first")
	q.Notify(model.SeverityError, "second")
	assert.Equal(t, 2, q.Len())

	// Nothing expires before it has been shown.
	clock.advance(time.Minute)
	assert.False(t, q.Expire())

	head, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "first", head.Message)

	clock.advance(DefaultTTL - time.Second)
	assert.False(t, q.Expire())

	clock.advance(time.Second)
	assert.True(t, q.Expire())

	head, ok = q.Current()
	require.True(t, ok)
	assert.Equal(t, "second", head.Message)
	assert.Equal(t, model.SeverityError, head.Severity)

	q.Dismiss()
	_, ok = q.Current()
	assert.False(t, ok)
	assert.Zero(t, q.Len())
	q.Dismiss()
}

func TestQueue_PersistsThroughSink(t *testing.T) {
	sink := &memSink{}
	q := NewQueue(time.Second, WithSink(sink))

	q.NotifyTask("12", model.SeveritySuccess, "done")
	require.Len(t, sink.saved, 1)
	assert.Equal(t, "12", sink.saved[0].TaskID)
	assert.NotEmpty(t, sink.saved[0].ID)
	assert.False(t, sink.saved[0].CreatedAt.IsZero())
}

func TestQueue_SinkFailureStillDisplays(t *testing.T) {
	q := NewQueue(time.Second, WithSink(&memSink{err: errors.New("disk full")}))

	q.Notify(model.SeverityWarning, "still shown")
	head, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "still shown", head.Message)
}

func TestQueue_BoundedKeepsDisplayedHead(t *testing.T) {
	q := NewQueue(time.Second)
	q.Notify(model.SeverityInfo, "head")
	_, _ = q.Current()

	for i := 0; i < 60; i++ {
		q.Notify(model.SeverityInfo, "spam")
	}

	assert.Equal(t, 50, q.Len())
	head, _ := q.Current()
	assert.Equal(t, "head", head.Message)
}

func TestQueue_PeekDoesNotStartClock(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	q := NewQueue(time.Second, WithClock(clock.now))

	q.Notify(model.SeverityInfo, "first")
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "first", head.Message)

	clock.advance(time.Hour)
	assert.False(t, q.Expire())
	assert.Equal(t, 1, q.Len())
}
