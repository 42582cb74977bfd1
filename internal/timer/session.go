package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/nhle/helpdesk-console/internal/model"
)

// WarningThreshold is the remaining time, in seconds, at which the
// one-shot "time almost up" notification fires.
const WarningThreshold = 300

// Phase is the lifecycle stage of a timer session.
type Phase int

const (
	// PhaseIdle means no task is bound.
	PhaseIdle Phase = iota
	// PhaseRunning covers both ticking and paused timers.
	PhaseRunning
	// PhaseExpired waits for the user to finish or add extra time.
	PhaseExpired
	// PhaseDone shows the congratulations dialog until dismissed.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseExpired:
		return "expired"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Event is what a tick produced.
type Event int

const (
	EventNone Event = iota
	EventTick
	EventWarning
	EventExpired
)

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	Task       *model.Task
	Remaining  int
	HasTimer   bool
	Running    bool
	UsedExtra  bool
	Phase      Phase
	Allotted   int
	Extra      int
	StartedAt  time.Time
	Position   Position
	Dragging   bool
	Generation uint64
}

// Elapsed returns the fraction of the current countdown already spent,
// between 0 and 1.
func (s Snapshot) Elapsed() float64 {
	total := s.Allotted
	if s.UsedExtra {
		total = s.Extra
	}
	if !s.HasTimer || total <= 0 {
		return 0
	}
	return float64(total-s.Remaining) / float64(total)
}

// Session is the single active countdown. It is owned by whoever
// constructs it and shared by pointer; all methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	task      *model.Task
	remaining int
	running   bool
	usedExtra bool
	allotted  int
	extra     int
	warned    bool
	phase     Phase
	startedAt time.Time

	// gen is bumped whenever a scheduled tick must be discarded.
	gen uint64

	drag Drag
	now  func() time.Time
}

// NewSession returns an idle session whose widget rests at start.
func NewSession(start Position, clampToViewport bool) *Session {
	return &Session{
		drag: NewDrag(start, clampToViewport),
		now:  time.Now,
	}
}

// Start binds task and begins counting down its allotted duration.
// Prior session state is overwritten, never merged.
func (s *Session) Start(task model.Task) error {
	secs, err := ParsePositiveHMS(task.Duration)
	if err != nil {
		return fmt.Errorf("task %d: %w", task.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := task
	s.task = &t
	s.remaining = secs
	s.allotted = secs
	s.extra = 0
	s.running = true
	s.usedExtra = false
	s.warned = false
	s.phase = PhaseRunning
	s.startedAt = s.now()
	s.gen++
	return nil
}

// Toggle pauses or resumes a running countdown and returns the new
// running state. Without a bound, running task it does nothing.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task == nil || s.phase != PhaseRunning {
		return false
	}
	s.running = !s.running
	s.gen++
	return s.running
}

// StopAndClear resets every timer field to its empty default and
// invalidates any pending tick. The widget position is kept.
func (s *Session) StopAndClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.task = nil
	s.remaining = 0
	s.running = false
	s.usedExtra = false
	s.allotted = 0
	s.extra = 0
	s.warned = false
	s.phase = PhaseIdle
	s.startedAt = time.Time{}
	s.gen++
}

// Tick advances the countdown by one second. Ticks scheduled under an
// older generation, or arriving while paused, are ignored. The warning
// fires at most once per session, extension included.
func (s *Session) Tick(gen uint64) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || !s.tickingLocked() {
		return EventNone
	}

	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.running = false
		s.phase = PhaseExpired
		s.gen++
		return EventExpired
	}
	if s.remaining == WarningThreshold && !s.warned {
		s.warned = true
		return EventWarning
	}
	return EventTick
}

// Ticking reports whether the tick driver should be scheduling ticks.
func (s *Session) Ticking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickingLocked()
}

func (s *Session) tickingLocked() bool {
	return s.task != nil && s.running && s.remaining > 0
}

// Generation identifies the current tick schedule.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Extend restarts an expired countdown from extra seconds only; the
// original allotment is not re-added. task replaces the bound copy so
// later updates carry the fields the backend accepted.
func (s *Session) Extend(task model.Task, extra int) error {
	if extra <= 0 {
		return ErrZeroDuration
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task == nil {
		return ErrNoActiveTimer
	}
	if s.phase != PhaseExpired {
		return ErrNotExpired
	}
	if s.usedExtra {
		return ErrExtraTimeUsed
	}

	t := task
	s.task = &t
	s.remaining = extra
	s.extra += extra
	s.usedExtra = true
	s.running = true
	s.phase = PhaseRunning
	s.gen++
	return nil
}

// Complete moves an expired session on after the task was marked done.
// Without extra time the session enters PhaseDone so the congratulations
// dialog can render; otherwise it is cleared. It reports whether the
// dialog should show.
func (s *Session) Complete() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.task == nil {
		return false, ErrNoActiveTimer
	}
	if s.phase != PhaseExpired {
		return false, ErrNotExpired
	}
	if s.usedExtra {
		s.clearLocked()
		return false, nil
	}
	s.phase = PhaseDone
	s.running = false
	s.gen++
	return true, nil
}

// Remaining returns the seconds left; ok is false when no task is bound.
func (s *Session) Remaining() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return 0, false
	}
	return s.remaining, true
}

// FormatRemaining renders the remaining time as "HH:MM:SS", or
// "00:00:00" when no timer is active.
func (s *Session) FormatRemaining() string {
	remaining, ok := s.Remaining()
	if !ok {
		return "00:00:00"
	}
	return FormatHMS(remaining)
}

// Task returns a copy of the bound task.
func (s *Session) Task() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return model.Task{}, false
	}
	return *s.task, true
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Remaining:  s.remaining,
		HasTimer:   s.task != nil,
		Running:    s.running,
		UsedExtra:  s.usedExtra,
		Phase:      s.phase,
		Allotted:   s.allotted,
		Extra:      s.extra,
		StartedAt:  s.startedAt,
		Position:   s.drag.Position(),
		Dragging:   s.drag.Dragging(),
		Generation: s.gen,
	}
	if s.task != nil {
		t := *s.task
		snap.Task = &t
	}
	return snap
}

// record builds a history entry for the bound task. Caller holds no lock.
func (s *Session) record(outcome model.SessionOutcome, progress int) (model.SessionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task == nil {
		return model.SessionRecord{}, false
	}
	return model.SessionRecord{
		TaskID:          s.task.ID,
		TaskTitle:       s.task.Title,
		AllottedSeconds: s.allotted,
		ExtraSeconds:    s.extra,
		RemainingAtEnd:  s.remaining,
		Progress:        progress,
		Outcome:         outcome,
		StartedAt:       s.startedAt,
		EndedAt:         s.now(),
	}, true
}

// Grab starts dragging the widget if pointer is on it.
func (s *Session) Grab(pointer Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drag.Contains(pointer) {
		return false
	}
	s.drag.Grab(pointer)
	return true
}

// DragTo moves the widget while a drag is in progress.
func (s *Session) DragTo(pointer Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Move(pointer)
}

// Release ends a drag gesture.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Release()
}

// Dragging reports whether a drag gesture is in progress.
func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Dragging()
}

// Position returns the widget's top-left corner.
func (s *Session) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Position()
}

// SetWidgetSize records the rendered widget size.
func (s *Session) SetWidgetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.SetSize(width, height)
}

// SetViewport records the terminal size.
func (s *Session) SetViewport(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.SetViewport(width, height)
}
