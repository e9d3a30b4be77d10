package driven

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// SourceStore persists ingestion directory configuration.
type SourceStore interface {
	// Save inserts or updates a source.
	Save(ctx context.Context, source domain.Source) error

	// Get retrieves a source by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Delete removes a source.
	Delete(ctx context.Context, id string) error
}

// SyncStateStore persists ingestion progress per source.
type SyncStateStore interface {
	// Save inserts or updates sync state.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves sync state for a source.
	// Returns domain.ErrNotFound if no sync has completed yet.
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)

	// Delete removes sync state for a source.
	Delete(ctx context.Context, sourceID string) error
}
