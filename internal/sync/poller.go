package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/source"
	"github.com/nhle/helpdesk-console/internal/store"
)

// SyncState represents the current state of the sync loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the sync state of the backend.
type SyncStatus struct {
	SourceType source.SourceType
	State      SyncState
	LastSync   time.Time
	Error      error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes.
type SyncResultMsg struct {
	Tasks        []model.Task
	Statuses     []model.Status
	Projects     []model.Project
	Source       source.SourceType
	Error        error
	AuthError    *AuthErrorMsg
	NewTaskCount int
}

// AuthErrorMsg is a tea.Msg sent when the backend rejects the credentials.
type AuthErrorMsg struct {
	SourceType source.SourceType
	Message    string
}

// TaskNotifier receives a message for each newly assigned task.
type TaskNotifier interface {
	NotifyTask(taskID string, severity model.Severity, message string)
}

// fetchTimeout is the maximum time allowed for a single sync.
const fetchTimeout = 30 * time.Second

// Poller keeps the local cache in step with the backend.
type Poller struct {
	store    store.Store
	src      source.Source
	user     model.User
	interval time.Duration
	notifier TaskNotifier
	logger   *slog.Logger

	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
	stopped   bool
}

// New creates a Poller that syncs src into s every interval. New tasks
// visible to user are announced through notifier, which may be nil.
func New(
	s store.Store,
	src source.Source,
	user model.User,
	interval time.Duration,
	notifier TaskNotifier,
) *Poller {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Poller{
		store:     s,
		src:       src,
		user:      user,
		interval:  interval,
		notifier:  notifier,
		logger:    slog.Default(),
		status:    SyncStatus{SourceType: src.Type(), State: SyncIdle},
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and
// subscribes to results. A stopped Poller cannot be restarted.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine. The result channel is closed once the
// goroutine exits, releasing any pending WaitForNextResult.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
	p.stopped = true
}

// Refresh triggers an immediate sync.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already pending.
	}
	return nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	// loop is the only sender on resultCh.
	defer close(p.resultCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.syncOnce()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.syncOnce()
		case <-p.triggerCh:
			p.syncOnce()
		}
	}
}

// syncOnce fetches statuses, projects and tasks, replaces the cache, and
// sends a SyncResultMsg on the result channel.
func (p *Poller) syncOnce() {
	st := p.src.Type()
	p.setState(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	msg, err := p.fetch(ctx)
	if err != nil {
		p.setState(SyncError, err)
		p.logger.Warn("sync failed", "source", st, "error", err)

		if source.IsAuthError(err) {
			p.sendResult(SyncResultMsg{
				Source: st,
				Error:  err,
				AuthError: &AuthErrorMsg{
					SourceType: st,
					Message:    fmt.Sprintf("%s: authentication expired. Press 'c' to reconfigure.", st),
				},
			})
			return
		}

		p.sendResult(SyncResultMsg{Source: st, Error: err})
		return
	}

	p.setState(SyncIdle, nil)
	p.logger.Debug("sync complete",
		"source", st, "tasks", len(msg.Tasks), "new", msg.NewTaskCount)
	p.sendResult(msg)
}

func (p *Poller) fetch(ctx context.Context) (SyncResultMsg, error) {
	st := p.src.Type()

	statuses, err := p.src.FetchStatuses(ctx)
	if err != nil {
		return SyncResultMsg{}, err
	}
	if err := p.store.SyncStatuses(ctx, statuses); err != nil {
		return SyncResultMsg{}, fmt.Errorf("caching statuses: %w", err)
	}

	projects, err := p.src.FetchProjects(ctx)
	if err != nil {
		return SyncResultMsg{}, err
	}
	if err := p.store.SyncProjects(ctx, projects); err != nil {
		return SyncResultMsg{}, fmt.Errorf("caching projects: %w", err)
	}

	result, err := p.src.FetchItems(ctx)
	if err != nil {
		return SyncResultMsg{}, err
	}

	// The very first sync fills an empty cache; announcing every task
	// then would flood the snackbar.
	cached, err := p.store.GetTasks(ctx, store.TaskFilter{Limit: 1})
	if err != nil {
		return SyncResultMsg{}, fmt.Errorf("reading cache: %w", err)
	}
	firstSync := len(cached) == 0

	added, err := p.store.SyncTasks(ctx, result.Items)
	if err != nil {
		return SyncResultMsg{}, fmt.Errorf("caching tasks: %w", err)
	}

	isNew := make(map[int]bool, len(added))
	for _, id := range added {
		isNew[id] = true
	}

	newCount := 0
	for _, t := range result.Items {
		if !isNew[t.ID] || !p.user.CanSee(t) {
			continue
		}
		newCount++
		if !firstSync && p.notifier != nil {
			p.notifier.NotifyTask(t.Key(), model.SeverityInfo, fmt.Sprintf("New task assigned: %s", t.Title))
		}
	}

	return SyncResultMsg{
		Tasks:        result.Items,
		Statuses:     statuses,
		Projects:     projects,
		Source:       st,
		NewTaskCount: newCount,
	}, nil
}

func (p *Poller) setState(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// Call it after processing a SyncResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
