package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	row := store.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	require.NoError(t, row.Scan(&version))
	assert.Equal(t, 1, version)
}

func TestSourceStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	source := domain.Source{
		ID:   "src-1",
		Name: "thermodynamics",
		Path: "/notes/thermo",
	}
	require.NoError(t, sources.Save(ctx, source))

	got, err := sources.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "thermodynamics", got.Name)
	assert.Equal(t, "/notes/thermo", got.Path)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSourceStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SourceStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceStore_SaveUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "src-1", Name: "old", Path: "/a"}))
	require.NoError(t, sources.Save(ctx, domain.Source{ID: "src-1", Name: "new", Path: "/b"}))

	got, err := sources.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, "/b", got.Path)

	list, err := sources.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSourceStore_Delete(t *testing.T) {
	store := newTestStore(t)
	sources := store.SourceStore()
	ctx := context.Background()

	require.NoError(t, sources.Save(ctx, domain.Source{ID: "src-1", Name: "n", Path: "/a"}))
	require.NoError(t, sources.Delete(ctx, "src-1"))

	_, err := sources.Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncStateStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SourceStore().Save(ctx, domain.Source{ID: "src-1", Name: "n", Path: "/a"}))

	states := store.SyncStateStore()
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, states.Save(ctx, domain.SyncState{SourceID: "src-1", Cursor: "c1", LastSync: now}))

	got, err := states.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.Cursor)
	assert.Equal(t, now, got.LastSync.UTC())

	// Upsert replaces the cursor.
	require.NoError(t, states.Save(ctx, domain.SyncState{SourceID: "src-1", Cursor: "c2", LastSync: now}))
	got, err = states.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "c2", got.Cursor)
}

func TestSyncStateStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SyncStateStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncStateStore_CascadesOnSourceDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SourceStore().Save(ctx, domain.Source{ID: "src-1", Name: "n", Path: "/a"}))
	require.NoError(t, store.SyncStateStore().Save(ctx, domain.SyncState{SourceID: "src-1", Cursor: "c"}))

	require.NoError(t, store.SourceStore().Delete(ctx, "src-1"))

	_, err := store.SyncStateStore().Get(ctx, "src-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDocument(id string) *domain.Document {
	now := time.Now().UTC()
	return &domain.Document{
		ID:          id,
		SourceID:    "src-1",
		URI:         "/notes/" + id + ".md",
		Title:       id + ".md",
		Content:     "content of " + id,
		ContentHash: "hash-" + id,
		Pages:       3,
		Metadata:    map[string]any{"ext": ".md"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, ".md", got.Metadata["ext"])
}

func TestDocumentStore_GetByURI(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1")
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocumentByURI(ctx, "src-1", doc.URI)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)

	_, err = docs.GetDocumentByURI(ctx, "other-source", doc.URI)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListFiltersBySource(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	a := testDocument("doc-a")
	b := testDocument("doc-b")
	b.SourceID = "src-2"
	require.NoError(t, docs.SaveDocument(ctx, a))
	require.NoError(t, docs.SaveDocument(ctx, b))

	all, err := docs.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	only, err := docs.ListDocuments(ctx, "src-2")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "doc-b", only[0].ID)
}

func TestDocumentStore_ChunksRoundTrip(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))

	chunks := []domain.Chunk{
		{ID: "c-2", DocumentID: "doc-1", Content: "second", Position: 1, Page: 2, Embedding: []float32{0.4, 0.5, 0.6}},
		{ID: "c-1", DocumentID: "doc-1", Content: "first", Position: 0, Page: 1, Embedding: []float32{0.1, 0.2, 0.3}},
	}
	require.NoError(t, docs.SaveChunks(ctx, chunks))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Position order, not insertion order.
	assert.Equal(t, "c-1", got[0].ID)
	assert.Equal(t, "c-2", got[1].ID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got[0].Embedding)
	assert.Equal(t, 2, got[1].Page)
}

func TestDocumentStore_HasChunk(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1", Content: "x", Position: 0},
	}))

	ok, err := docs.HasChunk(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = docs.HasChunk(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStore_ChunkCount(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	count, err := docs.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1", Content: "x", Position: 0},
		{ID: "c-2", DocumentID: "doc-1", Content: "y", Position: 1},
	}))

	count, err = docs.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDocumentStore_SampleChunksSpreadsAcrossDocuments(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	for _, id := range []string{"doc-a", "doc-b"} {
		require.NoError(t, docs.SaveDocument(ctx, testDocument(id)))
		require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
			{ID: id + "-0", DocumentID: id, Content: "p0", Position: 0},
			{ID: id + "-1", DocumentID: id, Content: "p1", Position: 1},
			{ID: id + "-2", DocumentID: id, Content: "p2", Position: 2},
		}))
	}

	sample, err := docs.SampleChunks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, sample, 3)

	// A sample smaller than the corpus still covers every document
	// before taking second chunks.
	seen := map[string]bool{}
	for _, chunk := range sample {
		seen[chunk.DocumentID] = true
	}
	assert.Len(t, seen, 2)
}

func TestDocumentStore_DeleteChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1", Content: "x", Position: 0},
		{ID: "c-2", DocumentID: "doc-1", Content: "y", Position: 1},
	}))

	require.NoError(t, docs.DeleteChunks(ctx, []string{"c-1"}))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c-2", got[0].ID)

	// Empty slice is a no-op.
	require.NoError(t, docs.DeleteChunks(ctx, nil))
}

func TestDocumentStore_DeleteDocumentCascadesChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1", Content: "x", Position: 0},
	}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := docs.ChunkCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestChatStore_RecentMessagesOldestFirst(t *testing.T) {
	store := newTestStore(t)
	chat := store.ChatStore()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, chat.SaveMessage(ctx, domain.ChatMessage{
			ID:             fmt.Sprintf("m-%d", i),
			ConversationID: "conv-1",
			Role:           domain.RoleUser,
			Content:        fmt.Sprintf("message %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := chat.RecentMessages(ctx, "conv-1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// The last three messages, oldest first.
	assert.Equal(t, "message 2", got[0].Content)
	assert.Equal(t, "message 3", got[1].Content)
	assert.Equal(t, "message 4", got[2].Content)
}

func TestChatStore_ConversationsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	chat := store.ChatStore()
	ctx := context.Background()

	require.NoError(t, chat.SaveMessage(ctx, domain.ChatMessage{
		ID: "m-1", ConversationID: "conv-1", Role: domain.RoleUser, Content: "a",
	}))
	require.NoError(t, chat.SaveMessage(ctx, domain.ChatMessage{
		ID: "m-2", ConversationID: "conv-2", Role: domain.RoleUser, Content: "b",
	}))

	got, err := chat.RecentMessages(ctx, "conv-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Content)
}

func TestChatStore_ClearConversation(t *testing.T) {
	store := newTestStore(t)
	chat := store.ChatStore()
	ctx := context.Background()

	require.NoError(t, chat.SaveMessage(ctx, domain.ChatMessage{
		ID: "m-1", ConversationID: "conv-1", Role: domain.RoleUser, Content: "a",
	}))

	require.NoError(t, chat.ClearConversation(ctx, "conv-1"))

	got, err := chat.RecentMessages(ctx, "conv-1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFlashcardStore_SaveAndListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	cards := store.FlashcardStore()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, cards.SaveCards(ctx, []domain.Flashcard{
		{ID: "f-1", Question: "Q1", Answer: "A1", CreatedAt: base},
		{ID: "f-2", Question: "Q2", Answer: "A2", CreatedAt: base.Add(time.Minute)},
	}))

	got, err := cards.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Q2", got[0].Question)
	assert.Equal(t, "Q1", got[1].Question)
}

func TestFlashcardStore_DeleteCard(t *testing.T) {
	store := newTestStore(t)
	cards := store.FlashcardStore()
	ctx := context.Background()

	require.NoError(t, cards.SaveCards(ctx, []domain.Flashcard{
		{ID: "f-1", Question: "Q1", Answer: "A1"},
	}))
	require.NoError(t, cards.DeleteCard(ctx, "f-1"))

	got, err := cards.ListCards(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbeddingBlobRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.5, 3.14, 0, 1e-9}

	blob := float32SliceToBytes(original)
	restored := bytesToFloat32Slice(blob)

	assert.Equal(t, original, restored)
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
