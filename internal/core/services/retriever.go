package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// DefaultRetrievalK is the number of chunks retrieved per query when
// no override is configured.
const DefaultRetrievalK = 4

// Retriever finds the chunks most relevant to a query. The query is
// embedded with the same model used at ingestion and matched against
// the vector index, then hits are hydrated from the document store.
//
// When the query carries conversation history, the retriever asks the
// LLM to rewrite it into a standalone query first. A rewrite failure
// falls back to the raw query text rather than failing retrieval.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	docStore driven.DocumentStore
	llm      driven.LLMService
	k        int
}

// NewRetriever creates a Retriever. llm may be nil, in which case
// conversation history is ignored. k <= 0 selects DefaultRetrievalK.
func NewRetriever(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
	llm driven.LLMService,
	k int,
) *Retriever {
	if k <= 0 {
		k = DefaultRetrievalK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		docStore: docStore,
		llm:      llm,
		k:        k,
	}
}

// Retrieve returns up to k chunks ranked by similarity to the query.
// An empty index yields an empty result without touching the embedding
// service, so answering degrades gracefully before any ingestion.
func (r *Retriever) Retrieve(ctx context.Context, query domain.Query) (domain.RetrievalResult, error) {
	if r.index.Len() == 0 {
		logger.Info("retrieve: index is empty, skipping search")
		return domain.RetrievalResult{}, nil
	}

	text := query.Text
	result := domain.RetrievalResult{}

	if len(query.History) > 0 && r.llm != nil {
		rewritten, err := r.llm.RewriteQuery(ctx, query.Text, query.History)
		if err != nil {
			logger.Info("retrieve: query rewrite failed, using raw query: %v", err)
		} else if rewritten != "" {
			text = rewritten
			result.Rewritten = rewritten
		}
	}

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := r.index.Search(ctx, embedding, r.k)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("searching index: %w", err)
	}

	titles := make(map[string]string)
	for _, hit := range hits {
		chunk, err := r.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index and store can drift if a crash interrupted
				// ingestion; skip orphaned hits rather than failing.
				logger.Info("retrieve: chunk %s in index but not in store, skipping", hit.ChunkID)
				continue
			}
			return domain.RetrievalResult{}, fmt.Errorf("loading chunk %s: %w", hit.ChunkID, err)
		}

		title, ok := titles[chunk.DocumentID]
		if !ok {
			if doc, err := r.docStore.GetDocument(ctx, chunk.DocumentID); err == nil {
				title = doc.Title
			}
			titles[chunk.DocumentID] = title
		}

		result.Chunks = append(result.Chunks, domain.RetrievedChunk{
			Chunk:         *chunk,
			Score:         hit.Similarity,
			DocumentTitle: title,
		})
	}

	return result, nil
}
