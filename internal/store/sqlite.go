package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/helpdesk-console/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

const taskColumns = `id, project_id, title, description, status_id, priority,
	price, duration, date_start, date_end, assignee, progress, fetched_at`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to ":memory:" is a separate database, and SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SyncTasks replaces the cached task snapshot with tasks in a single
// transaction and reports which ids are new to the cache.
func (s *SQLiteStore) SyncTasks(ctx context.Context, tasks []model.Task) ([]int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing []int
	if err := tx.SelectContext(ctx, &existing, "SELECT id FROM tasks"); err != nil {
		return nil, fmt.Errorf("listing cached task ids: %w", err)
	}
	known := make(map[int]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return nil, fmt.Errorf("clearing tasks: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, upsertTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	var added []int
	for _, t := range tasks {
		if _, err := stmt.ExecContext(ctx, taskArgs(t)...); err != nil {
			return nil, fmt.Errorf("inserting task %d: %w", t.ID, err)
		}
		if !known[t.ID] {
			added = append(added, t.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing tasks: %w", err)
	}
	return added, nil
}

const upsertTaskQuery = `
	INSERT OR REPLACE INTO tasks (` + taskColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// UpsertTask inserts or replaces a single task, e.g. after re-reading it
// from the backend.
func (s *SQLiteStore) UpsertTask(ctx context.Context, task model.Task) error {
	if _, err := s.db.ExecContext(ctx, upsertTaskQuery, taskArgs(task)...); err != nil {
		return fmt.Errorf("upserting task %d: %w", task.ID, err)
	}
	return nil
}

func taskArgs(t model.Task) []any {
	return []any{
		t.ID, t.ProjectID, t.Title, t.Description, t.StatusID, t.Priority,
		t.Price, t.Duration, t.DateStart, t.DateEnd, t.Assignee, t.Progress,
		t.FetchedAt.UTC(),
	}
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	opts TaskFilter,
) ([]model.Task, error) {
	var conditions []string
	var args []any

	if opts.StatusID != nil {
		conditions = append(conditions, "status_id = ?")
		args = append(args, *opts.StatusID)
	}
	if opts.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *opts.ProjectID)
	}
	if opts.Assignee != nil {
		conditions = append(conditions, "assignee = ?")
		args = append(args, *opts.Assignee)
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "id"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"id":         true,
			"title":      true,
			"status_id":  true,
			"priority":   true,
			"progress":   true,
			"date_start": true,
			"date_end":   true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id int) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	return &task, nil
}

// rowScanner is satisfied by both *sqlx.Row and *sqlx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans a task row selected with taskColumns.
func scanTask(row rowScanner) (model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&task.StatusID, &task.Priority, &task.Price, &task.Duration,
		&task.DateStart, &task.DateEnd, &task.Assignee, &task.Progress,
		&task.FetchedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}
	return task, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
