package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestOrchestrator = (*IngestOrchestrator)(nil)

// IngestOrchestrator coordinates document ingestion: connector output
// is normalised, chunked, embedded and indexed. Per-file failures are
// collected in the report rather than aborting the pass. Passes for
// the same source are serialised; disjoint sources may run
// concurrently.
type IngestOrchestrator struct {
	sourceStore driven.SourceStore
	syncStore   driven.SyncStateStore
	docStore    driven.DocumentStore
	factory     driven.ConnectorFactory
	registry    driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	vectorIndex driven.VectorIndex

	mu     sync.RWMutex
	active map[string]*driving.IngestStatus
}

// NewIngestOrchestrator creates an IngestOrchestrator.
func NewIngestOrchestrator(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	factory driven.ConnectorFactory,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		sourceStore: sourceStore,
		syncStore:   syncStore,
		docStore:    docStore,
		factory:     factory,
		registry:    registry,
		pipeline:    pipeline,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		active:      make(map[string]*driving.IngestStatus),
	}
}

// Ingest runs an ingestion pass for one source.
func (o *IngestOrchestrator) Ingest(ctx context.Context, sourceID string) (*driving.IngestReport, error) {
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	if err := o.begin(sourceID); err != nil {
		return nil, err
	}
	defer o.end(sourceID)

	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	state, err := o.syncStore.Get(ctx, sourceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get sync state: %w", err)
	}

	logger.Info("Starting ingestion for source %s (%s)", source.Name, source.Path)

	report := &driving.IngestReport{SourceID: sourceID}

	if state != nil && state.Cursor != "" {
		changesCh, errsCh := connector.IncrementalSync(ctx, *state)
		err = o.processChanges(ctx, source, changesCh, errsCh, report)
	} else {
		docsCh, errsCh := connector.FullSync(ctx)
		err = o.processDocuments(ctx, source, docsCh, errsCh, report)
	}
	if err != nil {
		return nil, err
	}

	if err := o.vectorIndex.Flush(); err != nil {
		return nil, fmt.Errorf("flush vector index: %w", err)
	}

	newState := domain.SyncState{
		SourceID: sourceID,
		Cursor:   connector.Cursor(),
		LastSync: time.Now(),
	}
	if err := o.syncStore.Save(ctx, newState); err != nil {
		return nil, fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("Ingestion complete: %d documents, %d skipped, %d chunks indexed, %d failures",
		report.DocumentsProcessed, report.DocumentsSkipped, report.ChunksIndexed, len(report.Failures))
	return report, nil
}

// IngestAll runs an ingestion pass for every configured source.
func (o *IngestOrchestrator) IngestAll(ctx context.Context) ([]driving.IngestReport, error) {
	sources, err := o.sourceStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	var reports []driving.IngestReport
	var errs []error
	for _, source := range sources {
		report, err := o.Ingest(ctx, source.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("ingest %s: %w", source.ID, err))
			continue
		}
		reports = append(reports, *report)
	}

	if len(errs) > 0 {
		return reports, errors.Join(errs...)
	}
	return reports, nil
}

// Status returns ingestion progress for a source.
func (o *IngestOrchestrator) Status(_ context.Context, sourceID string) (*driving.IngestStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.active[sourceID]; ok {
		// Return a copy to avoid races with the running pass.
		copied := *status
		return &copied, nil
	}
	return &driving.IngestStatus{SourceID: sourceID}, nil
}

// Watch blocks, re-ingesting files as they change, until ctx is
// cancelled.
func (o *IngestOrchestrator) Watch(ctx context.Context, sourceID string) error {
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	changesCh, errsCh := connector.Watch(ctx)
	logger.Info("Watching %s for changes", source.Path)

	report := &driving.IngestReport{SourceID: sourceID}

	for {
		select {
		case <-ctx.Done():
			if err := o.vectorIndex.Flush(); err != nil {
				logger.Warn("watch: flush vector index: %v", err)
			}
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("watch: %v", err)

		case change, ok := <-changesCh:
			if !ok {
				return nil
			}
			o.applyChange(ctx, source, change, report)
			if err := o.vectorIndex.Flush(); err != nil {
				logger.Warn("watch: flush vector index: %v", err)
			}
		}
	}
}

// Reindex rebuilds the vector index from the embeddings persisted in
// the document store. No embedding calls are made.
func (o *IngestOrchestrator) Reindex(ctx context.Context) (int, error) {
	docs, err := o.docStore.ListDocuments(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	restored := 0
	for _, doc := range docs {
		chunks, err := o.docStore.GetChunks(ctx, doc.ID)
		if err != nil {
			return restored, fmt.Errorf("get chunks for %s: %w", doc.ID, err)
		}
		for _, chunk := range chunks {
			if chunk.Embedding == nil {
				continue
			}
			if err := o.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
				return restored, fmt.Errorf("add vector: %w", err)
			}
			restored++
		}
	}

	if err := o.vectorIndex.Flush(); err != nil {
		return restored, fmt.Errorf("flush vector index: %w", err)
	}

	logger.Info("Reindex complete: %d vectors restored", restored)
	return restored, nil
}

// begin marks a pass as running, failing when one already is.
func (o *IngestOrchestrator) begin(sourceID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if status, ok := o.active[sourceID]; ok && status.Running {
		return domain.ErrIngestInProgress
	}
	o.active[sourceID] = &driving.IngestStatus{SourceID: sourceID, Running: true}
	return nil
}

func (o *IngestOrchestrator) end(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, sourceID)
}

func (o *IngestOrchestrator) track(sourceID string, update func(*driving.IngestStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if status, ok := o.active[sourceID]; ok {
		update(status)
	}
}

// processDocuments drains a full sync.
func (o *IngestOrchestrator) processDocuments(
	ctx context.Context,
	source *domain.Source,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
	report *driving.IngestReport,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			o.recordFailure(source.ID, report, "", err)

		case raw, ok := <-docsCh:
			if !ok {
				return nil
			}
			o.ingestOne(ctx, source, &raw, report)
		}
	}
}

// processChanges drains an incremental sync.
func (o *IngestOrchestrator) processChanges(
	ctx context.Context,
	source *domain.Source,
	changesCh <-chan domain.RawDocumentChange,
	errsCh <-chan error,
	report *driving.IngestReport,
) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			o.recordFailure(source.ID, report, "", err)

		case change, ok := <-changesCh:
			if !ok {
				return nil
			}
			o.applyChange(ctx, source, change, report)
		}
	}
}

// applyChange routes one change event to processing or deletion.
func (o *IngestOrchestrator) applyChange(
	ctx context.Context,
	source *domain.Source,
	change domain.RawDocumentChange,
	report *driving.IngestReport,
) {
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		o.ingestOne(ctx, source, &change.Document, report)

	case domain.ChangeDeleted:
		logger.Debug("Deleting: %s", change.Document.URI)
		if err := o.deleteByURI(ctx, source.ID, change.Document.URI); err != nil {
			o.recordFailure(source.ID, report, change.Document.URI, err)
		}
	}
}

// ingestOne runs one raw document through the pipeline, recording the
// outcome in the report.
func (o *IngestOrchestrator) ingestOne(
	ctx context.Context,
	source *domain.Source,
	raw *domain.RawDocument,
	report *driving.IngestReport,
) {
	logger.Debug("Processing: %s", raw.URI)

	skipped, indexed, reused, err := o.processOne(ctx, source, raw)
	if err != nil {
		o.recordFailure(source.ID, report, raw.URI, err)
		return
	}
	if skipped {
		report.DocumentsSkipped++
		return
	}

	report.DocumentsProcessed++
	report.ChunksIndexed += indexed
	report.ChunksReused += reused
	o.track(source.ID, func(s *driving.IngestStatus) {
		s.DocumentsProcessed++
		s.ChunksIndexed += indexed
	})
}

// processOne normalises, chunks, embeds and indexes one raw document.
// It reports whether the document was skipped as unchanged, and how
// many chunks were newly indexed versus reused by content hash.
func (o *IngestOrchestrator) processOne(
	ctx context.Context,
	source *domain.Source,
	raw *domain.RawDocument,
) (skipped bool, indexed, reused int, err error) {
	result, err := o.registry.Normalise(ctx, raw)
	if err != nil {
		return false, 0, 0, fmt.Errorf("normalise: %w", err)
	}
	doc := result.Document

	existing, err := o.docStore.GetDocumentByURI(ctx, source.ID, raw.URI)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, 0, 0, fmt.Errorf("lookup document: %w", err)
	}

	if existing != nil && existing.ContentHash == doc.ContentHash {
		logger.Debug("Unchanged, skipping: %s", raw.URI)
		return true, 0, 0, nil
	}

	var staleChunks []domain.Chunk
	if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		staleChunks, err = o.docStore.GetChunks(ctx, existing.ID)
		if err != nil {
			return false, 0, 0, fmt.Errorf("get previous chunks: %w", err)
		}
	} else {
		doc.ID = uuid.NewString()
		doc.CreatedAt = time.Now()
	}
	doc.UpdatedAt = time.Now()

	chunks, err := o.pipeline.Process(ctx, &doc, result.PageOffsets)
	if err != nil {
		return false, 0, 0, fmt.Errorf("post-process: %w", err)
	}

	indexed, reused, err = o.embedAndIndex(ctx, chunks)
	if err != nil {
		return false, 0, 0, err
	}

	if err := o.docStore.SaveDocument(ctx, &doc); err != nil {
		return false, 0, 0, fmt.Errorf("save document: %w", err)
	}
	if err := o.docStore.SaveChunks(ctx, chunks); err != nil {
		return false, 0, 0, fmt.Errorf("save chunks: %w", err)
	}

	if err := o.dropStale(ctx, staleChunks, chunks); err != nil {
		return false, 0, 0, err
	}
	return false, indexed, reused, nil
}

// embedAndIndex embeds chunks whose content hash is new and adds their
// vectors to the index. Chunks already stored keep their embedding and
// are counted as reused; re-adding their ID to the index is a no-op.
func (o *IngestOrchestrator) embedAndIndex(ctx context.Context, chunks []domain.Chunk) (indexed, reused int, err error) {
	var toEmbed []int
	for i := range chunks {
		has, err := o.docStore.HasChunk(ctx, chunks[i].ID)
		if err != nil {
			return 0, 0, fmt.Errorf("check chunk: %w", err)
		}
		if has {
			stored, err := o.docStore.GetChunk(ctx, chunks[i].ID)
			if err != nil {
				return 0, 0, fmt.Errorf("get chunk: %w", err)
			}
			chunks[i].Embedding = stored.Embedding
			reused++
			continue
		}
		toEmbed = append(toEmbed, i)
	}

	if len(toEmbed) > 0 {
		texts := make([]string, len(toEmbed))
		for j, i := range toEmbed {
			texts[j] = chunks[i].Content
		}
		embeddings, err := o.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, 0, fmt.Errorf("embed chunks: %w", err)
		}
		for j, i := range toEmbed {
			chunks[i].Embedding = embeddings[j]
		}
	}

	for i := range chunks {
		if chunks[i].Embedding == nil {
			continue
		}
		if err := o.vectorIndex.Add(ctx, chunks[i].ID, chunks[i].Embedding); err != nil {
			return 0, 0, fmt.Errorf("add vector: %w", err)
		}
	}
	return len(toEmbed), reused, nil
}

// dropStale removes chunks from a previous version of a document that
// no longer exist in the current version.
func (o *IngestOrchestrator) dropStale(ctx context.Context, previous, current []domain.Chunk) error {
	if len(previous) == 0 {
		return nil
	}

	keep := make(map[string]struct{}, len(current))
	for _, c := range current {
		keep[c.ID] = struct{}{}
	}

	var stale []string
	for _, c := range previous {
		if _, ok := keep[c.ID]; !ok {
			stale = append(stale, c.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	logger.Debug("Dropping %d stale chunks", len(stale))
	for _, id := range stale {
		if err := o.vectorIndex.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete vector: %w", err)
		}
	}
	if err := o.docStore.DeleteChunks(ctx, stale); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// deleteByURI removes a document, its chunks and their vectors.
func (o *IngestOrchestrator) deleteByURI(ctx context.Context, sourceID, uri string) error {
	doc, err := o.docStore.GetDocumentByURI(ctx, sourceID, uri)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup document: %w", err)
	}

	chunks, err := o.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}
	for _, chunk := range chunks {
		if err := o.vectorIndex.Delete(ctx, chunk.ID); err != nil {
			return fmt.Errorf("delete vector: %w", err)
		}
	}

	if err := o.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// recordFailure adds a per-file failure to the report and status.
func (o *IngestOrchestrator) recordFailure(sourceID string, report *driving.IngestReport, uri string, err error) {
	logger.Warn("Ingestion failure for %q: %v", uri, err)
	report.Failures = append(report.Failures, domain.SourceFailure{URI: uri, Err: err})
	o.track(sourceID, func(s *driving.IngestStatus) {
		s.ErrorCount++
	})
}
