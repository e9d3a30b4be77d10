package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages ingestion directories.
type SourceService struct {
	sourceStore driven.SourceStore
	syncStore   driven.SyncStateStore
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
}

// NewSourceService creates a SourceService.
func NewSourceService(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
) *SourceService {
	return &SourceService{
		sourceStore: sourceStore,
		syncStore:   syncStore,
		docStore:    docStore,
		vectorIndex: vectorIndex,
	}
}

// Add registers a directory as an ingestion source.
func (s *SourceService) Add(ctx context.Context, name, path string) (*domain.Source, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: source name is required", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving path %q: %v", domain.ErrInvalidInput, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidInput, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", domain.ErrInvalidInput, abs)
	}

	existing, err := s.sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	for _, src := range existing {
		if src.Path == abs {
			return nil, fmt.Errorf("%w: path %q is already a source", domain.ErrAlreadyExists, abs)
		}
	}

	now := time.Now()
	source := domain.Source{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      abs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}

	logger.Info("Added source %s (%s)", name, abs)
	return &source, nil
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	return s.sourceStore.List(ctx)
}

// Remove deletes a source together with its documents, chunks, sync
// state and index entries.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if _, err := s.sourceStore.Get(ctx, id); err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	docs, err := s.docStore.ListDocuments(ctx, id)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range docs {
		chunks, err := s.docStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("get chunks: %w", err)
		}
		for _, chunk := range chunks {
			if err := s.vectorIndex.Delete(ctx, chunk.ID); err != nil {
				return fmt.Errorf("delete vector: %w", err)
			}
		}
		if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
	}
	if err := s.vectorIndex.Flush(); err != nil {
		return fmt.Errorf("flush vector index: %w", err)
	}

	if err := s.syncStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sync state: %w", err)
	}
	if err := s.sourceStore.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}

	logger.Info("Removed source %s with %d documents", id, len(docs))
	return nil
}
