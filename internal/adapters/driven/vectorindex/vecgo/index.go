// Package vecgo provides an embedded vector index adapter backed by
// github.com/hupe1980/vecgo. The index lives in memory and is
// snapshotted to disk on Flush, surviving process restart.
package vecgo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hupe1980/vecgo"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// snapshotFile and mappingFile are the on-disk artefacts under the
// index directory.
const (
	snapshotFile = "vectors.vecgo"
	mappingFile  = "chunks.json"
)

// entry is one chunk's bookkeeping in the sidecar mapping.
type entry struct {
	// VecgoID is the internal vecgo identifier of the vector.
	VecgoID uint64 `json:"vecgo_id"`

	// Seq is the insertion sequence number, used to break similarity
	// ties deterministically (earliest insert wins).
	Seq int `json:"seq"`
}

// Index stores chunk embeddings in a flat cosine index. Chunk IDs are
// content hashes, so Add is a natural no-op for vectors already
// present.
type Index struct {
	mu      sync.RWMutex
	db      *vecgo.Vecgo[string]
	entries map[string]entry
	nextSeq int
	dim     int
	dir     string
}

// New creates an empty index of the given dimensionality, persisting
// under dir.
func New(dir string, dimensions int) (*Index, error) {
	db, err := vecgo.Flat[string](dimensions).Cosine().Build()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return &Index{
		db:      db,
		entries: make(map[string]entry),
		dim:     dimensions,
		dir:     dir,
	}, nil
}

// Open loads the index persisted under dir, or creates an empty one
// when no snapshot exists. A snapshot that cannot be loaded fails with
// domain.ErrIndexCorrupt; recover by re-ingesting or running reindex.
func Open(dir string, dimensions int) (*Index, error) {
	snapshot := filepath.Join(dir, snapshotFile)
	if _, err := os.Stat(snapshot); errors.Is(err, os.ErrNotExist) {
		return New(dir, dimensions)
	}

	db, err := vecgo.NewFromFile[string](snapshot)
	if err != nil {
		return nil, fmt.Errorf("%w: load snapshot %s: %w", domain.ErrIndexCorrupt, snapshot, err)
	}

	entries, nextSeq, err := loadMapping(filepath.Join(dir, mappingFile))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexCorrupt, err)
	}

	return &Index{
		db:      db,
		entries: entries,
		nextSeq: nextSeq,
		dim:     dimensions,
		dir:     dir,
	}, nil
}

func loadMapping(path string) (map[string]entry, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read chunk mapping: %w", err)
	}

	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, fmt.Errorf("decode chunk mapping: %w", err)
	}

	nextSeq := 0
	for _, e := range entries {
		if e.Seq >= nextSeq {
			nextSeq = e.Seq + 1
		}
	}
	return entries, nextSeq, nil
}

// Add inserts a vector for the given chunk ID. Adding an ID that is
// already present is a no-op.
func (x *Index) Add(ctx context.Context, chunkID string, embedding []float32) error {
	if len(embedding) != x.dim {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(embedding), x.dim)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.entries[chunkID]; ok {
		return nil
	}

	id, err := x.db.Insert(ctx, vecgo.VectorWithData[string]{
		Vector: embedding,
		Data:   chunkID,
	})
	if err != nil {
		return fmt.Errorf("insert vector: %w", err)
	}

	x.entries[chunkID] = entry{VecgoID: id, Seq: x.nextSeq}
	x.nextSeq++
	return nil
}

// Delete removes a vector from the index. Unknown IDs are ignored.
func (x *Index) Delete(ctx context.Context, chunkID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	e, ok := x.entries[chunkID]
	if !ok {
		return nil
	}
	if err := x.db.Delete(ctx, e.VecgoID); err != nil {
		return fmt.Errorf("delete vector: %w", err)
	}
	delete(x.entries, chunkID)
	return nil
}

// Search returns the k nearest chunks by cosine similarity, best
// first. Ties are broken by insertion order, earliest first.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return nil, nil
	}

	results, err := x.db.KNNSearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	type ranked struct {
		hit driven.VectorHit
		seq int
	}
	hits := make([]ranked, 0, len(results))
	for _, r := range results {
		e, ok := x.entries[r.Data]
		if !ok {
			continue
		}
		hits = append(hits, ranked{
			hit: driven.VectorHit{
				ChunkID: r.Data,
				// Cosine distance is 1 - similarity.
				Similarity: 1 - float64(r.Distance),
			},
			seq: e.Seq,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hit.Similarity != hits[j].hit.Similarity {
			return hits[i].hit.Similarity > hits[j].hit.Similarity
		}
		return hits[i].seq < hits[j].seq
	})

	out := make([]driven.VectorHit, len(hits))
	for i, h := range hits {
		out[i] = h.hit
	}
	return out, nil
}

// Len returns the number of vectors currently indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Flush snapshots the index and its chunk mapping to disk.
func (x *Index) Flush() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := os.MkdirAll(x.dir, 0o700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	if err := x.db.SaveToFile(filepath.Join(x.dir, snapshotFile)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	data, err := json.Marshal(x.entries)
	if err != nil {
		return fmt.Errorf("encode chunk mapping: %w", err)
	}
	if err := os.WriteFile(filepath.Join(x.dir, mappingFile), data, 0o600); err != nil {
		return fmt.Errorf("write chunk mapping: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying index.
func (x *Index) Close() error {
	if err := x.Flush(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.db.Close()
}
