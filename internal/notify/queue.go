// Package notify holds the snackbar channel shared by every screen.
// Messages are shown one at a time, oldest first, and each hides itself
// after a fixed display time.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/helpdesk-console/internal/model"
)

// DefaultTTL is how long a message stays on screen.
const DefaultTTL = 6 * time.Second

// Sink persists notifications, typically the local store.
type Sink interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

type entry struct {
	n       model.Notification
	shownAt time.Time
}

// Queue is a FIFO of pending notifications. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	items   []entry
	ttl     time.Duration
	sink    Sink
	now     func() time.Time
	logger  *slog.Logger
	maxSize int
}

// Option configures a Queue.
type Option func(*Queue)

// WithSink persists every notification.
func WithSink(s Sink) Option {
	return func(q *Queue) { q.sink = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// NewQueue returns an empty queue. A non-positive ttl uses DefaultTTL.
func NewQueue(ttl time.Duration, opts ...Option) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	q := &Queue{
		ttl:     ttl,
		now:     time.Now,
		logger:  slog.Default(),
		maxSize: 50,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Notify enqueues an application-level message.
func (q *Queue) Notify(severity model.Severity, message string) {
	q.NotifyTask("", severity, message)
}

// NotifyTask enqueues a message about a task.
func (q *Queue) NotifyTask(taskID string, severity model.Severity, message string) {
	n := model.Notification{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Severity:  severity,
		Message:   message,
		CreatedAt: q.now(),
	}

	q.mu.Lock()
	q.items = append(q.items, entry{n: n})
	// Drop the oldest waiting messages, never the one on screen.
	for len(q.items) > q.maxSize {
		q.items = append(q.items[:1], q.items[2:]...)
	}
	q.mu.Unlock()

	if q.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := q.sink.CreateNotification(ctx, n); err != nil {
			q.logger.Warn("persisting notification", "error", err)
		}
	}
}

// Current returns the message at the head of the queue and starts its
// display clock on first call.
func (q *Queue) Current() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Notification{}, false
	}
	if q.items[0].shownAt.IsZero() {
		q.items[0].shownAt = q.now()
	}
	return q.items[0].n, true
}

// Peek returns the message at the head of the queue without starting its
// display clock.
func (q *Queue) Peek() (model.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return model.Notification{}, false
	}
	return q.items[0].n, true
}

// Expire drops the head once it has been displayed for the TTL and
// reports whether it did.
func (q *Queue) Expire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 || q.items[0].shownAt.IsZero() {
		return false
	}
	if q.now().Sub(q.items[0].shownAt) < q.ttl {
		return false
	}
	q.items = q.items[1:]
	return true
}

// Dismiss drops the head immediately.
func (q *Queue) Dismiss() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}

// Len returns the number of queued messages, the displayed one included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
