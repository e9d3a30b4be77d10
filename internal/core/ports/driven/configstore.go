package driven

// ConfigStore provides access to application configuration.
// The file-based implementation persists to TOML under the Caderno
// config directory.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	GetBool(key string) bool

	// Set stores a configuration value.
	Set(key string, value any) error

	// Delete removes a configuration value.
	Delete(key string) error

	// Keys returns all configuration keys.
	Keys() []string
}

// Well-known configuration keys.
const (
	// ConfigKeyChunkSize is the chunk size in characters.
	ConfigKeyChunkSize = "ingest.chunk_size"

	// ConfigKeyChunkOverlap is the overlap between chunks in characters.
	ConfigKeyChunkOverlap = "ingest.chunk_overlap"

	// ConfigKeyRetrieveK is the number of chunks retrieved per question.
	ConfigKeyRetrieveK = "retrieve.k"

	// ConfigKeyAllowEmptyContext controls whether a question with no
	// retrieved context falls back to the context-free template
	// instead of failing.
	ConfigKeyAllowEmptyContext = "retrieve.allow_empty_context"

	// ConfigKeyOllamaURL is the Ollama API base URL.
	ConfigKeyOllamaURL = "ollama.url"

	// ConfigKeyLLMModel is the generation model name.
	ConfigKeyLLMModel = "ollama.llm_model"

	// ConfigKeyEmbedModel is the embedding model name.
	ConfigKeyEmbedModel = "ollama.embed_model"

	// ConfigKeyStreamTimeout is the generation inactivity window in
	// seconds before a stream is closed as timed out.
	ConfigKeyStreamTimeout = "ollama.stream_timeout"
)
