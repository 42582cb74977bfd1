package store

import (
	"context"

	"github.com/nhle/helpdesk-console/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	StatusID  *int
	ProjectID *int
	Assignee  *string
	Query     *string // search title + description
	SortBy    string  // "id", "title", "status_id", "priority", "progress", "date_start", "date_end"
	SortDesc  bool
	Limit     int
	Offset    int
}

// Store defines the persistence interface for the cached backend snapshot,
// the notification log, and the timer session history.
type Store interface {
	// === Tasks ===

	// SyncTasks replaces the cached tasks and returns the ids that were
	// not cached before.
	SyncTasks(ctx context.Context, tasks []model.Task) ([]int, error)
	UpsertTask(ctx context.Context, task model.Task) error
	GetTasks(ctx context.Context, opts TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id int) (*model.Task, error)

	// === Statuses & projects ===

	SyncStatuses(ctx context.Context, statuses []model.Status) error
	GetStatuses(ctx context.Context) ([]model.Status, error)
	SyncProjects(ctx context.Context, projects []model.Project) error
	GetProjects(ctx context.Context, includeArchived bool) ([]model.Project, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error

	// === Timer sessions ===

	RecordSession(ctx context.Context, rec model.SessionRecord) error
	GetSessions(ctx context.Context, limit int) ([]model.SessionRecord, error)
	GetSessionsForTask(ctx context.Context, taskID int, limit int) ([]model.SessionRecord, error)

	Close() error
}
