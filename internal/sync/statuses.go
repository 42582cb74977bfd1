package sync

import (
	"context"
	"fmt"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/source"
	"github.com/nhle/helpdesk-console/internal/store"
)

// StatusCache serves the status list from the local cache and falls back
// to the backend when the cache is empty, e.g. before the first sync.
type StatusCache struct {
	store store.Store
	src   source.Source
}

// NewStatusCache returns a StatusCache over s and src.
func NewStatusCache(s store.Store, src source.Source) *StatusCache {
	return &StatusCache{store: s, src: src}
}

// Statuses returns the known task statuses.
func (c *StatusCache) Statuses(ctx context.Context) ([]model.Status, error) {
	cached, err := c.store.GetStatuses(ctx)
	if err == nil && len(cached) > 0 {
		return cached, nil
	}

	statuses, err := c.src.FetchStatuses(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.SyncStatuses(ctx, statuses); err != nil {
		return nil, fmt.Errorf("caching statuses: %w", err)
	}
	return statuses, nil
}
