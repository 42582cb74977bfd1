package testutil

import (
	"testing"
	"time"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Statuses returns the backend's default French status list.
func Statuses() []model.Status {
	return []model.Status{
		{ID: 1, Name: "À faire"},
		{ID: 2, Name: "En cours"},
		{ID: 3, Name: "Terminé"},
	}
}

// Task builds a to-do task assigned to agent "7".
func Task(id int, title string) model.Task {
	return model.Task{
		ID:        id,
		ProjectID: 1,
		Title:     title,
		StatusID:  1,
		Priority:  "Moyenne",
		Duration:  "00:30:00",
		DateStart: "2026-03-01",
		Assignee:  "7",
		FetchedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}
