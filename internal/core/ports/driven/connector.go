package driven

import (
	"context"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

// Connector fetches raw documents from a data source.
// The only connector Caderno ships is the filesystem connector, but the
// ingest orchestrator is written against this interface.
type Connector interface {
	// Type identifies the connector type (e.g., "filesystem").
	Type() string

	// SourceID returns the ID of the source this connector serves.
	SourceID() string

	// FullSync emits every document in the source. The document channel
	// is closed when enumeration completes. Per-file read failures are
	// reported on the error channel as domain.ErrSourceRead wraps and do
	// not stop enumeration.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// IncrementalSync emits documents changed since the cursor in state.
	// Semantics of the channels match FullSync.
	IncrementalSync(ctx context.Context, state domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error)

	// Watch emits change events as they happen until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, <-chan error)

	// Cursor returns the cursor to persist after a completed sync.
	Cursor() string

	// Close releases resources.
	Close() error
}

// ConnectorFactory creates connectors from source configuration.
type ConnectorFactory interface {
	// Create builds a connector for the given source.
	Create(ctx context.Context, source domain.Source) (Connector, error)
}
