package store

import (
	"context"
	"fmt"

	"github.com/nhle/helpdesk-console/internal/model"
)

// SyncStatuses replaces the cached status list.
func (s *SQLiteStore) SyncStatuses(ctx context.Context, statuses []model.Status) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM statuses"); err != nil {
		return fmt.Errorf("clearing statuses: %w", err)
	}
	for _, st := range statuses {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO statuses (id, name) VALUES (?, ?)",
			st.ID, st.Name,
		)
		if err != nil {
			return fmt.Errorf("inserting status %d: %w", st.ID, err)
		}
	}
	return tx.Commit()
}

// GetStatuses returns the cached statuses ordered by id.
func (s *SQLiteStore) GetStatuses(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	if err := s.db.SelectContext(ctx, &statuses, "SELECT id, name FROM statuses ORDER BY id"); err != nil {
		return nil, fmt.Errorf("querying statuses: %w", err)
	}
	return statuses, nil
}

// SyncProjects replaces the cached project list.
func (s *SQLiteStore) SyncProjects(ctx context.Context, projects []model.Project) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clearing projects: %w", err)
	}
	for _, p := range projects {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO projects (
				id, name, status_name, date_start, date_end,
				budget, archived, team_id, fetched_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.StatusName, p.DateStart, p.DateEnd,
			p.Budget, boolToInt(p.Archived), p.TeamID, p.FetchedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting project %d: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// GetProjects returns cached projects ordered by name, optionally
// including archived ones.
func (s *SQLiteStore) GetProjects(
	ctx context.Context,
	includeArchived bool,
) ([]model.Project, error) {
	query := `SELECT id, name, status_name, date_start, date_end,
		budget, archived, team_id, fetched_at FROM projects`
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var (
			p        model.Project
			archived int
		)
		err := rows.Scan(
			&p.ID, &p.Name, &p.StatusName, &p.DateStart, &p.DateEnd,
			&p.Budget, &archived, &p.TeamID, &p.FetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		p.Archived = archived != 0
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
