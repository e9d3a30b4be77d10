package driving

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// SourceService manages ingestion directory configuration.
type SourceService interface {
	// Add registers a directory as an ingestion source.
	// The path must exist and be a directory.
	Add(ctx context.Context, name, path string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Remove deletes a source, its documents, and its index entries.
	Remove(ctx context.Context, id string) error
}
