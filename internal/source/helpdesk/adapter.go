package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/source"
)

// ErrInvalidCredentials is returned by Authenticate when no account
// matches the email and password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Adapter implements source.Source for the help-desk backend and is the
// Task Update Service the timer bridge writes through.
type Adapter struct {
	client *Client
	now    func() time.Time
}

// NewAdapter creates a new help-desk source adapter.
func NewAdapter(baseURL, token string, timeout time.Duration) *Adapter {
	return &Adapter{
		client: NewClient(baseURL, token, timeout),
		now:    time.Now,
	}
}

// Type returns the source type identifier.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeHelpdesk
}

// ValidateConnection verifies the backend answers GET /statuts.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	statuses, err := a.FetchStatuses(ctx)
	if err != nil {
		return "", fmt.Errorf("validating helpdesk connection: %w", err)
	}
	return fmt.Sprintf("connected to %s (%d statuses)", a.client.baseURL, len(statuses)), nil
}

// FetchItems retrieves every task.
func (a *Adapter) FetchItems(ctx context.Context) (*source.FetchResult, error) {
	var raw []Task
	if err := a.client.Get(ctx, "/tasks", &raw); err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}

	fetched := a.now()
	tasks := make([]model.Task, 0, len(raw))
	for _, t := range raw {
		task := toModelTask(t)
		task.FetchedAt = fetched
		tasks = append(tasks, task)
	}
	return &source.FetchResult{Items: tasks, Total: len(tasks)}, nil
}

// GetTask re-reads a single task.
func (a *Adapter) GetTask(ctx context.Context, id int) (model.Task, error) {
	var raw Task
	if err := a.client.Get(ctx, "/tasks/"+strconv.Itoa(id), &raw); err != nil {
		return model.Task{}, fmt.Errorf("fetching task %d: %w", id, err)
	}
	task := toModelTask(raw)
	task.FetchedAt = a.now()
	return task, nil
}

// UpdateTask sends the full task representation with PUT /tasks/{id}.
func (a *Adapter) UpdateTask(ctx context.Context, task model.Task) error {
	path := "/tasks/" + strconv.Itoa(task.ID)
	if err := a.client.Put(ctx, path, toPayload(task), nil); err != nil {
		return fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	return nil
}

// FetchStatuses retrieves the task statuses.
func (a *Adapter) FetchStatuses(ctx context.Context) ([]model.Status, error) {
	var raw []Status
	if err := a.client.Get(ctx, "/statuts", &raw); err != nil {
		return nil, fmt.Errorf("fetching statuses: %w", err)
	}
	statuses := make([]model.Status, 0, len(raw))
	for _, s := range raw {
		statuses = append(statuses, model.Status{ID: s.ID, Name: s.Name})
	}
	return statuses, nil
}

// Statuses makes the adapter usable as an uncached status provider.
func (a *Adapter) Statuses(ctx context.Context) ([]model.Status, error) {
	return a.FetchStatuses(ctx)
}

// FetchProjects retrieves the projects.
func (a *Adapter) FetchProjects(ctx context.Context) ([]model.Project, error) {
	var raw []Project
	if err := a.client.Get(ctx, "/projects", &raw); err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}
	fetched := a.now()
	projects := make([]model.Project, 0, len(raw))
	for _, p := range raw {
		project := model.Project{
			ID:        p.ID,
			Name:      p.Name,
			DateStart: p.DateStart,
			DateEnd:   p.DateEnd,
			Budget:    p.Budget,
			Archived:  p.Archived,
			TeamID:    p.TeamID.Int(),
			FetchedAt: fetched,
		}
		if p.Status != nil {
			project.StatusName = p.Status.Name
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// ListAgents retrieves the agents.
func (a *Adapter) ListAgents(ctx context.Context) ([]model.Agent, error) {
	var raw []Agent
	if err := a.client.Get(ctx, "/agents", &raw); err != nil {
		return nil, fmt.Errorf("fetching agents: %w", err)
	}
	agents := make([]model.Agent, 0, len(raw))
	for _, ag := range raw {
		agents = append(agents, model.Agent(ag))
	}
	return agents, nil
}

// ListTeams retrieves the teams.
func (a *Adapter) ListTeams(ctx context.Context) ([]model.Team, error) {
	var raw []Team
	if err := a.client.Get(ctx, "/equipes", &raw); err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	teams := make([]model.Team, 0, len(raw))
	for _, t := range raw {
		teams = append(teams, model.Team{ID: t.ID, Name: t.Name, ManagerID: t.ManagerID.Int()})
	}
	return teams, nil
}

// Authenticate looks the account up by email and password. The backend
// has no login endpoint, so the account list is matched client-side.
func (a *Adapter) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var accounts []Account
	if err := a.client.Get(ctx, "/utilisateurs", &accounts); err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	for _, acc := range accounts {
		if strings.EqualFold(acc.Email, email) && acc.Password == password {
			return &model.User{
				ID:    strconv.Itoa(acc.ID),
				Email: acc.Email,
				Role:  strings.ToLower(acc.Role),
			}, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func toModelTask(t Task) model.Task {
	return model.Task{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		StatusID:    t.StatusID,
		Priority:    t.Priority,
		Price:       t.Price,
		Duration:    t.Duration,
		DateStart:   t.DateStart,
		DateEnd:     t.DateEnd,
		Assignee:    string(t.Assignee),
		Progress:    t.Progress,
	}
}

func toPayload(t model.Task) TaskPayload {
	p := TaskPayload{
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: nullable(t.Description),
		StatusID:    t.StatusID,
		Priority:    t.Priority,
		Price:       t.Price,
		Duration:    t.Duration,
		DateStart:   nullable(t.DateStart),
		DateEnd:     nullable(t.DateEnd),
		Progress:    t.Progress,
	}
	// The backend column is numeric; keep non-numeric ids as sent.
	if t.Assignee != "" {
		if n, err := strconv.Atoi(t.Assignee); err == nil {
			p.Assignee = n
		} else {
			p.Assignee = t.Assignee
		}
	}
	return p
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
