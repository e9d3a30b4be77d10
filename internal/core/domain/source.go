package domain

import "time"

// Source represents a configured ingestion directory.
// Each source produces documents via the filesystem connector.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable name for this source.
	Name string

	// Path is the directory scanned for documents.
	Path string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// SyncState tracks the ingestion progress for a source.
type SyncState struct {
	// SourceID links to the Source being ingested.
	SourceID string

	// Cursor is an opaque token for incremental ingestion.
	// The filesystem connector uses the latest modification time seen.
	Cursor string

	// LastSync is when the last successful ingestion pass completed.
	LastSync time.Time
}
