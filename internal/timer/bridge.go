package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nhle/helpdesk-console/internal/model"
)

// TaskUpdater persists a full task representation on the backend.
type TaskUpdater interface {
	UpdateTask(ctx context.Context, task model.Task) error
}

// StatusProvider lists the task statuses the backend knows about.
type StatusProvider interface {
	Statuses(ctx context.Context) ([]model.Status, error)
}

// Notifier receives user-facing messages. It does not own display.
type Notifier interface {
	Notify(severity model.Severity, message string)
}

// Recorder keeps a history of finished sessions.
type Recorder interface {
	RecordSession(ctx context.Context, rec model.SessionRecord) error
}

// Action describes what StartOrToggle did.
type Action int

const (
	ActionStarted Action = iota
	ActionPaused
	ActionResumed
)

// Completion is the result of finishing a task.
type Completion struct {
	Task         model.Task
	Progress     int
	Congratulate bool
}

// Bridge keeps a task's backend status and progress in step with its
// timer. Every transition awaits the remote update before touching the
// local session, so a failed request leaves the session as it was.
type Bridge struct {
	session  *Session
	updater  TaskUpdater
	statuses StatusProvider
	notifier Notifier
	recorder Recorder
	aliases  model.StatusAliases
	now      func() time.Time
	logger   *slog.Logger

	busy atomic.Bool
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithRecorder stores finished and abandoned sessions.
func WithRecorder(r Recorder) BridgeOption {
	return func(b *Bridge) { b.recorder = r }
}

// WithStatusAliases overrides the status name aliases.
func WithStatusAliases(a model.StatusAliases) BridgeOption {
	return func(b *Bridge) { b.aliases = a }
}

// WithClock overrides the clock used for end dates.
func WithClock(now func() time.Time) BridgeOption {
	return func(b *Bridge) { b.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) BridgeOption {
	return func(b *Bridge) { b.logger = l }
}

// NewBridge wires a session to its collaborators.
func NewBridge(
	session *Session,
	updater TaskUpdater,
	statuses StatusProvider,
	notifier Notifier,
	opts ...BridgeOption,
) *Bridge {
	b := &Bridge{
		session:  session,
		updater:  updater,
		statuses: statuses,
		notifier: notifier,
		aliases:  model.DefaultStatusAliases(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Session returns the session the bridge drives.
func (b *Bridge) Session() *Session {
	return b.session
}

// StartOrToggle pauses or resumes the timer when task is already the
// running one, and starts a new session otherwise.
func (b *Bridge) StartOrToggle(ctx context.Context, task model.Task) (Action, error) {
	snap := b.session.Snapshot()
	if snap.HasTimer && snap.Task.ID == task.ID {
		if snap.Phase != PhaseRunning {
			return ActionStarted, b.fail("start", fmt.Errorf(
				"%w: timer for %q is %s", ErrNotStartable, task.Title, snap.Phase,
			))
		}
		if b.session.Toggle() {
			return ActionResumed, nil
		}
		return ActionPaused, nil
	}
	return ActionStarted, b.Start(ctx, task)
}

// Start moves a to-do task to in-progress on the backend and then starts
// its countdown. An in-progress task starts without a remote call. Any
// previously bound task is abandoned.
func (b *Bridge) Start(ctx context.Context, task model.Task) error {
	if !b.busy.CompareAndSwap(false, true) {
		return b.fail("start", ErrTransitionInFlight)
	}
	defer b.busy.Store(false)

	if _, err := ParsePositiveHMS(task.Duration); err != nil {
		return b.fail("start", fmt.Errorf("%q has no usable duration: %w", task.Title, err))
	}

	set, err := b.statusSet(ctx)
	if err != nil {
		return b.fail("start", err)
	}

	switch set.KindOf(task.StatusID) {
	case model.StatusTodo:
		inProgress, ok := set.Find(model.StatusInProgress)
		if !ok {
			return b.fail("start", fmt.Errorf("%w: in progress", ErrStatusNotFound))
		}
		next := task
		next.StatusID = inProgress.ID
		next.Progress = 0
		if err := b.updater.UpdateTask(ctx, next); err != nil {
			return b.fail("start", fmt.Errorf("moving %q to %s: %w", task.Title, inProgress.Name, err))
		}
		task = next
		b.notifier.Notify(model.SeverityInfo, fmt.Sprintf("%q moved to %s", task.Title, inProgress.Name))
	case model.StatusInProgress:
	default:
		name := set.Name(task.StatusID)
		if name == "" {
			name = "an unknown status"
		}
		return b.fail("start", fmt.Errorf("%w: %q is %s", ErrNotStartable, task.Title, name))
	}

	if prev, ok := b.session.Task(); ok && prev.ID != task.ID {
		b.record(ctx, model.OutcomeAbandoned, prev.Progress)
	}

	if err := b.session.Start(task); err != nil {
		return b.fail("start", err)
	}

	b.logger.Info("timer started", "task_id", task.ID, "duration", task.Duration)
	b.notifier.Notify(model.SeverityInfo, fmt.Sprintf(
		"Timer started for %q (%s)", task.Title, b.session.FormatRemaining(),
	))
	return nil
}

// FinishNow marks the expired task done with its final progress. On
// failure the session stays expired so the user can retry.
func (b *Bridge) FinishNow(ctx context.Context) (Completion, error) {
	if !b.busy.CompareAndSwap(false, true) {
		return Completion{}, b.fail("finish", ErrTransitionInFlight)
	}
	defer b.busy.Store(false)

	snap := b.session.Snapshot()
	if !snap.HasTimer {
		return Completion{}, b.fail("finish", ErrNoActiveTimer)
	}
	if snap.Phase != PhaseExpired {
		return Completion{}, b.fail("finish", ErrNotExpired)
	}

	set, err := b.statusSet(ctx)
	if err != nil {
		return Completion{}, b.fail("finish", err)
	}
	done, ok := set.Find(model.StatusDone)
	if !ok {
		return Completion{}, b.fail("finish", fmt.Errorf("%w: done", ErrStatusNotFound))
	}

	progress := Progress(snap.Allotted, snap.Extra)
	next := *snap.Task
	next.StatusID = done.ID
	next.DateEnd = b.now().Format(model.DateLayout)
	next.Progress = progress

	if err := b.updater.UpdateTask(ctx, next); err != nil {
		return Completion{}, b.fail("finish", fmt.Errorf("marking %q %s: %w", next.Title, done.Name, err))
	}

	b.record(ctx, model.OutcomeCompleted, progress)

	congratulate, err := b.session.Complete()
	if err != nil {
		// The session moved on while the request was in flight; the
		// backend is already up to date.
		b.logger.Warn("completing session", "task_id", next.ID, "error", err)
	}

	b.logger.Info("task finished", "task_id", next.ID, "progress", progress, "extra_seconds", snap.Extra)
	b.notifier.Notify(model.SeveritySuccess, fmt.Sprintf(
		"%q marked %s (progress %d%%)", next.Title, done.Name, progress,
	))
	return Completion{Task: next, Progress: progress, Congratulate: congratulate}, nil
}

// AddExtraTime grants one extension to an expired session. The backend
// receives the intermediate progress first; the countdown restarts from
// the extra duration only once that succeeds.
func (b *Bridge) AddExtraTime(ctx context.Context, input string) (int, error) {
	if !b.busy.CompareAndSwap(false, true) {
		return 0, b.fail("extend", ErrTransitionInFlight)
	}
	defer b.busy.Store(false)

	snap := b.session.Snapshot()
	if !snap.HasTimer {
		return 0, b.fail("extend", ErrNoActiveTimer)
	}
	if snap.Phase != PhaseExpired {
		return 0, b.fail("extend", ErrNotExpired)
	}
	if snap.UsedExtra {
		return 0, b.fail("extend", ErrExtraTimeUsed)
	}

	extra, err := ParsePositiveHMS(input)
	if err != nil {
		return 0, b.fail("extend", err)
	}

	set, err := b.statusSet(ctx)
	if err != nil {
		return 0, b.fail("extend", err)
	}
	inProgress, ok := set.Find(model.StatusInProgress)
	if !ok {
		return 0, b.fail("extend", fmt.Errorf("%w: in progress", ErrStatusNotFound))
	}

	progress := Progress(snap.Allotted, extra)
	next := *snap.Task
	next.StatusID = inProgress.ID
	next.DateEnd = ""
	next.Progress = progress

	if err := b.updater.UpdateTask(ctx, next); err != nil {
		return 0, b.fail("extend", fmt.Errorf("updating %q: %w", next.Title, err))
	}

	if err := b.session.Extend(next, extra); err != nil {
		return 0, b.fail("extend", err)
	}

	b.logger.Info("extra time added", "task_id", next.ID, "extra_seconds", extra, "progress", progress)
	b.notifier.Notify(model.SeverityInfo, fmt.Sprintf(
		"Added %s to %q, progress now %d%%", FormatHMS(extra), next.Title, progress,
	))
	return progress, nil
}

// Tick advances the session and announces the five-minute warning.
func (b *Bridge) Tick(gen uint64) Event {
	ev := b.session.Tick(gen)
	switch ev {
	case EventWarning:
		title := ""
		if t, ok := b.session.Task(); ok {
			title = t.Title
		}
		b.notifier.Notify(model.SeverityInfo, fmt.Sprintf("5 minutes remaining for %q", title))
	case EventExpired:
		if t, ok := b.session.Task(); ok {
			b.logger.Info("timer expired", "task_id", t.ID)
		}
	}
	return ev
}

// Dismiss closes the congratulations dialog and clears the session.
func (b *Bridge) Dismiss() {
	if b.session.Phase() == PhaseDone {
		b.session.StopAndClear()
	}
}

// Abandon stops the current session without touching the backend.
func (b *Bridge) Abandon(ctx context.Context) {
	task, ok := b.session.Task()
	if !ok {
		return
	}
	if b.session.Phase() != PhaseDone {
		b.record(ctx, model.OutcomeAbandoned, task.Progress)
	}
	b.session.StopAndClear()
	b.logger.Info("timer abandoned", "task_id", task.ID)
	b.notifier.Notify(model.SeverityInfo, fmt.Sprintf("Timer for %q stopped", task.Title))
}

func (b *Bridge) statusSet(ctx context.Context) (StatusSet, error) {
	statuses, err := b.statuses.Statuses(ctx)
	if err != nil {
		return StatusSet{}, fmt.Errorf("loading statuses: %w", err)
	}
	return NewStatusSet(statuses, b.aliases), nil
}

func (b *Bridge) record(ctx context.Context, outcome model.SessionOutcome, progress int) {
	if b.recorder == nil {
		return
	}
	rec, ok := b.session.record(outcome, progress)
	if !ok {
		return
	}
	if err := b.recorder.RecordSession(ctx, rec); err != nil {
		b.logger.Warn("recording timer session", "task_id", rec.TaskID, "error", err)
	}
}

// fail logs err, surfaces it as an error notification and returns it.
func (b *Bridge) fail(op string, err error) error {
	b.logger.Warn("timer transition failed", "op", op, "error", err)
	b.notifier.Notify(model.SeverityError, err.Error())
	return err
}
