package ai

import (
	"context"
	"fmt"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
)

// SnapshotReader is the subset of the store a snapshot is built from.
type SnapshotReader interface {
	GetTasks(ctx context.Context, opts store.TaskFilter) ([]model.Task, error)
	GetProjects(ctx context.Context, includeArchived bool) ([]model.Project, error)
}

// BuildSnapshot assembles the request data set from the cached tasks and
// projects plus the given agents and teams, which may be nil.
func BuildSnapshot(
	ctx context.Context,
	r SnapshotReader,
	agents []model.Agent,
	teams []model.Team,
) (Snapshot, error) {
	projects, err := r.GetProjects(ctx, true)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading projects: %w", err)
	}
	tasks, err := r.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading tasks: %w", err)
	}

	snap := Snapshot{
		Projects: make([]Project, 0, len(projects)),
		Tasks:    make([]Task, 0, len(tasks)),
		Agents:   make([]Agent, 0, len(agents)),
		Teams:    make([]Team, 0, len(teams)),
		Language: "fr",
	}
	for _, p := range projects {
		ap := Project{
			ID:        p.ID,
			Name:      p.Name,
			DateStart: p.DateStart,
			DateEnd:   p.DateEnd,
			Budget:    p.Budget,
			Archived:  p.Archived,
		}
		if p.StatusName != "" {
			ap.Status = &ProjectStatus{Name: p.StatusName}
		}
		if p.TeamID != 0 {
			id := p.TeamID
			ap.TeamID = &id
		}
		snap.Projects = append(snap.Projects, ap)
	}
	for _, t := range tasks {
		snap.Tasks = append(snap.Tasks, Task{
			ID:        t.ID,
			ProjectID: t.ProjectID,
			DateStart: t.DateStart,
			DateEnd:   t.DateEnd,
			StatusID:  t.StatusID,
			Assignee:  t.Assignee,
			Title:     t.Title,
		})
	}
	for _, a := range agents {
		snap.Agents = append(snap.Agents, Agent{
			ID: a.ID, LastName: a.LastName, FirstName: a.FirstName, Email: a.Email,
		})
	}
	for _, t := range teams {
		snap.Teams = append(snap.Teams, Team{ID: t.ID, Name: t.Name, ManagerID: t.ManagerID})
	}
	return snap, nil
}
