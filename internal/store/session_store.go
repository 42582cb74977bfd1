package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/helpdesk-console/internal/model"
)

const sessionColumns = `id, task_id, task_title, allotted_seconds, extra_seconds,
	remaining_at_end, progress, outcome, started_at, ended_at`

// RecordSession appends a finished timer session to the history.
func (s *SQLiteStore) RecordSession(ctx context.Context, rec model.SessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timer_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TaskID, rec.TaskTitle, rec.AllottedSeconds, rec.ExtraSeconds,
		rec.RemainingAtEnd, rec.Progress, string(rec.Outcome),
		rec.StartedAt.UTC(), rec.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording session for task %d: %w", rec.TaskID, err)
	}
	return nil
}

// GetSessions returns the most recent sessions, newest first. A
// non-positive limit returns all of them.
func (s *SQLiteStore) GetSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	query := "SELECT " + sessionColumns + " FROM timer_sessions ORDER BY ended_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.querySessions(ctx, query)
}

// GetSessionsForTask returns the sessions recorded for one task, newest
// first.
func (s *SQLiteStore) GetSessionsForTask(
	ctx context.Context,
	taskID int,
	limit int,
) ([]model.SessionRecord, error) {
	query := "SELECT " + sessionColumns + " FROM timer_sessions WHERE task_id = ? ORDER BY ended_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.querySessions(ctx, query, taskID)
}

func (s *SQLiteStore) querySessions(ctx context.Context, query string, args ...any) ([]model.SessionRecord, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying timer sessions: %w", err)
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		var (
			rec     model.SessionRecord
			outcome string
		)
		err := rows.Scan(
			&rec.ID, &rec.TaskID, &rec.TaskTitle, &rec.AllottedSeconds, &rec.ExtraSeconds,
			&rec.RemainingAtEnd, &rec.Progress, &outcome, &rec.StartedAt, &rec.EndedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning timer session row: %w", err)
		}
		rec.Outcome = model.SessionOutcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}
