package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown normaliser or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestInProgress indicates an ingestion pass for the same
	// source is already running. Concurrent ingestion of disjoint
	// sources is allowed; the same source is serialised.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrSourceRead indicates a file could not be read or parsed.
	// Recoverable and per-file: other files in the batch proceed.
	ErrSourceRead = errors.New("source read failed")

	// ErrEmbedding indicates the embedding backend is unreachable.
	// Propagated to the caller of ingestion or query; never retried
	// silently, the caller decides on retry policy.
	ErrEmbedding = errors.New("embedding backend unavailable")

	// ErrIndexCorrupt indicates persisted vector index state cannot
	// be read. Fatal to that index instance; requires re-ingestion.
	ErrIndexCorrupt = errors.New("vector index corrupt")

	// ErrGenerationUnavailable indicates the model endpoint cannot be
	// reached. Surfaced to the caller; retrying is a caller concern,
	// blind retries against a model that failed to load are wasteful.
	ErrGenerationUnavailable = errors.New("generation endpoint unavailable")

	// ErrGenerationTimeout indicates no token arrived within the
	// configured inactivity window. The stream is closed and the
	// completion is reported as partial.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrNoContext indicates retrieval found no relevant chunks and
	// the pipeline is configured to refuse ungrounded generation.
	ErrNoContext = errors.New("no retrieval context available")

	// ErrTemplateInvalid indicates a prompt template is missing a
	// required placeholder. Raised at startup, never per-request.
	ErrTemplateInvalid = errors.New("invalid prompt template")
)
