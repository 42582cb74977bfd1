package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/helpdesk-console/internal/model"
)

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.Severity == "" {
		n.Severity = model.SeverityInfo
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, task_id, severity, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.TaskID, string(n.Severity), n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetNotifications returns the most recent notifications, newest first.
// A non-positive limit returns all of them.
func (s *SQLiteStore) GetNotifications(
	ctx context.Context,
	limit int,
) ([]model.Notification, error) {
	query := "SELECT id, task_id, severity, message, read, created_at FROM notifications ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryNotifications(ctx, query)
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	return s.queryNotifications(ctx,
		"SELECT id, task_id, severity, message, read, created_at FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every notification as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE read = 0"); err != nil {
		return fmt.Errorf("marking notifications as read: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryNotifications(ctx context.Context, query string) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// scanNotification scans a notification row.
func scanNotification(row rowScanner) (model.Notification, error) {
	var (
		n        model.Notification
		severity string
		readInt  int
	)

	err := row.Scan(&n.ID, &n.TaskID, &severity, &n.Message, &readInt, &n.CreatedAt)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Severity = model.Severity(severity)
	n.Read = readInt != 0

	return n, nil
}
