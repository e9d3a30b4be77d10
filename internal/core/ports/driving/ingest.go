package driving

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// IngestOrchestrator coordinates document ingestion for sources.
type IngestOrchestrator interface {
	// Ingest runs an ingestion pass for one source. Per-file failures
	// do not abort the pass; they are collected in the report.
	// A second Ingest for the same source while one is running returns
	// domain.ErrIngestInProgress; disjoint sources may run
	// concurrently.
	Ingest(ctx context.Context, sourceID string) (*IngestReport, error)

	// IngestAll runs an ingestion pass for every configured source.
	IngestAll(ctx context.Context) ([]IngestReport, error)

	// Status returns ingestion progress for a source.
	Status(ctx context.Context, sourceID string) (*IngestStatus, error)

	// Watch blocks, re-ingesting files in the source directory as
	// they change, until ctx is cancelled.
	Watch(ctx context.Context, sourceID string) error

	// Reindex rebuilds the vector index from stored chunks without
	// re-embedding. Used to recover after the index file is lost or
	// corrupted. Returns the number of vectors restored.
	Reindex(ctx context.Context) (int, error)
}

// IngestStatus reports progress of a running ingestion pass.
type IngestStatus struct {
	// SourceID is the source being ingested.
	SourceID string

	// Running is true while a pass is in progress.
	Running bool

	// DocumentsProcessed counts documents ingested so far.
	DocumentsProcessed int

	// ChunksIndexed counts chunks embedded and indexed so far.
	ChunksIndexed int

	// ErrorCount counts per-file failures so far.
	ErrorCount int
}

// IngestReport summarises a completed ingestion pass.
// A pass with failures is a partial success, not an error.
type IngestReport struct {
	// SourceID is the source that was ingested.
	SourceID string

	// DocumentsProcessed counts documents ingested.
	DocumentsProcessed int

	// DocumentsSkipped counts documents skipped as unchanged.
	DocumentsSkipped int

	// ChunksIndexed counts chunks embedded and indexed.
	ChunksIndexed int

	// ChunksReused counts chunks skipped because their content hash
	// was already indexed.
	ChunksReused int

	// Failures lists files that could not be read or normalised.
	Failures []domain.SourceFailure
}
