package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/source"
	"github.com/nhle/helpdesk-console/internal/store"
	"github.com/nhle/helpdesk-console/internal/testutil"
)

type fakeSource struct {
	tasks       []model.Task
	err         error
	statusCalls int
}

func (f *fakeSource) Type() source.SourceType { return source.SourceTypeHelpdesk }

func (f *fakeSource) ValidateConnection(context.Context) (string, error) { return "ok", nil }

func (f *fakeSource) FetchItems(context.Context) (*source.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &source.FetchResult{Items: f.tasks, Total: len(f.tasks)}, nil
}

func (f *fakeSource) FetchStatuses(context.Context) ([]model.Status, error) {
	f.statusCalls++
	if f.err != nil {
		return nil, f.err
	}
	return testutil.Statuses(), nil
}

func (f *fakeSource) FetchProjects(context.Context) ([]model.Project, error) {
	return []model.Project{{ID: 1, Name: "Support", FetchedAt: time.Now()}}, nil
}

type recordingNotifier struct {
	messages []string
	taskIDs  []string
}

func (r *recordingNotifier) NotifyTask(taskID string, _ model.Severity, message string) {
	r.taskIDs = append(r.taskIDs, taskID)
	r.messages = append(r.messages, message)
}

func agent() model.User {
	return model.User{ID: "7", Role: model.RoleAgent}
}

func TestSyncOnce_CachesEverything(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{tasks: []model.Task{testutil.Task(1, "Reset VPN")}}
	p := New(s, src, agent(), time.Minute, nil)

	p.syncOnce()

	msg := <-p.resultCh
	require.NoError(t, msg.Error)
	assert.Len(t, msg.Tasks, 1)
	assert.Len(t, msg.Statuses, 3)
	assert.Len(t, msg.Projects, 1)
	assert.Equal(t, SyncIdle, p.Status().State)
	assert.False(t, p.Status().LastSync.IsZero())

	ctx := context.Background()
	statuses, err := s.GetStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSyncOnce_AnnouncesNewVisibleTasksAfterFirstSync(t *testing.T) {
	s := testutil.NewTestStore(t)
	notifier := &recordingNotifier{}
	src := &fakeSource{tasks: []model.Task{testutil.Task(1, "Reset VPN")}}
	p := New(s, src, agent(), time.Minute, notifier)

	p.syncOnce()
	first := <-p.resultCh
	assert.Equal(t, 1, first.NewTaskCount)
	assert.Empty(t, notifier.messages, "first sync stays quiet")

	other := testutil.Task(3, "Someone else's")
	other.Assignee = "9"
	src.tasks = append(src.tasks, testutil.Task(2, "Swap monitor"), other)

	p.syncOnce()
	second := <-p.resultCh
	assert.Equal(t, 1, second.NewTaskCount)
	assert.Equal(t, []string{"2"}, notifier.taskIDs)
	assert.Equal(t, []string{"New task assigned: Swap monitor"}, notifier.messages)
}

func TestSyncOnce_AuthError(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{err: &source.AuthError{SourceType: source.SourceTypeHelpdesk, Message: "401"}}
	p := New(s, src, agent(), time.Minute, nil)

	p.syncOnce()

	msg := <-p.resultCh
	require.Error(t, msg.Error)
	require.NotNil(t, msg.AuthError)
	assert.Contains(t, msg.AuthError.Message, "authentication expired")
	assert.Equal(t, SyncError, p.Status().State)
}

func TestSyncOnce_PlainError(t *testing.T) {
	s := testutil.NewTestStore(t)
	p := New(s, &fakeSource{err: errors.New("connection refused")}, agent(), time.Minute, nil)

	p.syncOnce()

	msg := <-p.resultCh
	require.Error(t, msg.Error)
	assert.Nil(t, msg.AuthError)
}

func TestPoller_StartAndStop(t *testing.T) {
	s := testutil.NewTestStore(t)
	p := New(s, &fakeSource{}, agent(), time.Hour, nil)

	cmd := p.Start()
	require.NotNil(t, cmd)
	assert.Nil(t, p.Start(), "second start is a no-op")

	msg := cmd()
	_, ok := msg.(SyncResultMsg)
	assert.True(t, ok)

	p.Refresh()
	next := p.WaitForNextResult()()
	_, ok = next.(SyncResultMsg)
	assert.True(t, ok)

	p.Stop()
	p.Stop()
}

func TestStatusCache_FallsBackToSource(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{}
	c := NewStatusCache(s, src)

	statuses, err := c.Statuses(context.Background())
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	assert.Equal(t, 1, src.statusCalls)

	_, err = c.Statuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.statusCalls, "served from cache")
}

func TestStop_ReleasesPendingWait(t *testing.T) {
	s := testutil.NewTestStore(t)
	src := &fakeSource{tasks: []model.Task{testutil.Task(1, "Reset VPN")}}
	p := New(s, src, agent(), time.Hour, nil)

	first := p.Start()
	require.NotNil(t, first)
	msg, ok := first().(SyncResultMsg)
	require.True(t, ok)
	require.NoError(t, msg.Error)

	wait := p.WaitForNextResult()
	done := make(chan tea.Msg, 1)
	go func() { done <- wait() }()

	p.Stop()
	select {
	case got := <-done:
		assert.Nil(t, got)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForNextResult still blocked after Stop")
	}

	assert.Nil(t, p.Start(), "a stopped poller stays stopped")
}
