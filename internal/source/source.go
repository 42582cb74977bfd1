package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/helpdesk-console/internal/model"
)

// SourceType names a task backend. The console talks to one help-desk API,
// but the poller and cache key their state by it.
type SourceType string

const (
	SourceTypeHelpdesk SourceType = "helpdesk"
)

// AuthError is returned when the backend rejects the bearer token.
type AuthError struct {
	SourceType SourceType
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *AuthError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("%s rejected credentials: %s", e.SourceType, e.Message)
	}
	return fmt.Sprintf("%s rejected credentials on %s (%d): %s",
		e.SourceType, e.Endpoint, e.StatusCode, e.Message)
}

// IsAuthError reports whether err wraps an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// FetchResult is one full task listing.
type FetchResult struct {
	Items []model.Task
	Total int
}

// Source is the read side of the backend that the poller mirrors into the
// local cache. Writes (status transitions, extra time) go through the
// helpdesk adapter directly.
type Source interface {
	Type() SourceType

	// ValidateConnection returns a short status line, such as the signed-in
	// account, when the backend answers with the configured token.
	ValidateConnection(ctx context.Context) (string, error)

	FetchItems(ctx context.Context) (*FetchResult, error)
	FetchStatuses(ctx context.Context) ([]model.Status, error)
	FetchProjects(ctx context.Context) ([]model.Project, error)
}
