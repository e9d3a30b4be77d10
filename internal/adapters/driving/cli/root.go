// Package cli provides the Caderno command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/caderno-labs/caderno-cli/internal/adapters/driven/config/file"
	ollamaembed "github.com/caderno-labs/caderno-cli/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/caderno-labs/caderno-cli/internal/adapters/driven/llm/ollama"
	"github.com/caderno-labs/caderno-cli/internal/adapters/driven/storage/sqlite"
	vecgoindex "github.com/caderno-labs/caderno-cli/internal/adapters/driven/vectorindex/vecgo"
	"github.com/caderno-labs/caderno-cli/internal/connectors/filesystem"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driven"
	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
	"github.com/caderno-labs/caderno-cli/internal/core/services"
	"github.com/caderno-labs/caderno-cli/internal/logger"
	"github.com/caderno-labs/caderno-cli/internal/normalisers"
	"github.com/caderno-labs/caderno-cli/internal/normalisers/markdown"
	pdfnorm "github.com/caderno-labs/caderno-cli/internal/normalisers/pdf"
	"github.com/caderno-labs/caderno-cli/internal/normalisers/plaintext"
	"github.com/caderno-labs/caderno-cli/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

// Persistent flags.
var (
	verbose bool
	baseDir string
)

// Services wired by initServices. Tests replace these directly.
var (
	answerService      driving.AnswerService
	sourceService      driving.SourceService
	ingestOrchestrator driving.IngestOrchestrator
	studyService       driving.StudyService
	configStore        driven.ConfigStore
	chatStore          driven.ChatStore
	documentStore      driven.DocumentStore
	llmService         driven.LLMService
	embeddingService   driven.EmbeddingService
	vectorIndex        driven.VectorIndex

	// shutdown releases wired resources. Set by initServices.
	shutdown func()
)

var rootCmd = &cobra.Command{
	Use:   "caderno",
	Short: "Study assistant over your own documents",
	Long: `Caderno answers questions about your own study material.

Documents are ingested from local directories, chunked and embedded
with a local Ollama model, and indexed on disk. Questions are answered
by a local LLM grounded in the most relevant chunks. Nothing leaves
your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)

		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseDir, "config", "", "configuration directory (default ~/.caderno)")
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if shutdown != nil {
			shutdown()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// initServices wires the full pipeline behind the commands. It is a
// no-op when services are already set, which lets tests inject mocks.
func initServices() error {
	if answerService != nil {
		return nil
	}

	dir := baseDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".caderno")
	}

	cfg, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	documentStore = store.DocumentStore()
	chatStore = store.ChatStore()

	embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: cfg.GetString(driven.ConfigKeyOllamaURL),
		Model:   cfg.GetString(driven.ConfigKeyEmbedModel),
	})
	embeddingService = embedder

	index, err := vecgoindex.Open(filepath.Join(dir, "index"), embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	vectorIndex = index

	llm := ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:       cfg.GetString(driven.ConfigKeyOllamaURL),
		Model:         cfg.GetString(driven.ConfigKeyLLMModel),
		StreamTimeout: time.Duration(cfg.GetInt(driven.ConfigKeyStreamTimeout)) * time.Second,
	})
	llmService = llm

	registry := normalisers.NewDefaultRegistry(
		plaintext.New(),
		markdown.New(),
		pdfnorm.New(),
	)

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	chunkCfg := map[string]any{}
	if v, ok := cfg.Get(driven.ConfigKeyChunkSize); ok {
		chunkCfg["chunk_size"] = v
	}
	if v, ok := cfg.Get(driven.ConfigKeyChunkOverlap); ok {
		chunkCfg["overlap"] = v
	}
	splitter, err := processors.Build("chunker", chunkCfg)
	if err != nil {
		return fmt.Errorf("building chunker: %w", err)
	}
	pipeline := postprocessors.NewPipeline(splitter)

	ingestOrchestrator = services.NewIngestOrchestrator(
		store.SourceStore(),
		store.SyncStateStore(),
		store.DocumentStore(),
		filesystem.NewFactory(),
		registry,
		pipeline,
		embedder,
		index,
	)

	retriever := services.NewRetriever(
		embedder,
		index,
		store.DocumentStore(),
		llm,
		cfg.GetInt(driven.ConfigKeyRetrieveK),
	)

	composer, err := services.NewPromptComposer(prompts)
	if err != nil {
		return fmt.Errorf("loading prompt templates: %w", err)
	}

	allowEmpty := true
	if v, ok := cfg.Get(driven.ConfigKeyAllowEmptyContext); ok {
		if b, isBool := v.(bool); isBool {
			allowEmpty = b
		}
	}

	answerService = services.NewAnswerPipeline(
		retriever,
		composer,
		llm,
		allowEmpty,
		driven.GenerateOptions{},
	)

	studyService = services.NewStudyService(
		store.DocumentStore(),
		store.FlashcardStore(),
		llm,
		prompts,
		driven.GenerateOptions{},
	)

	sourceService = services.NewSourceService(
		store.SourceStore(),
		store.SyncStateStore(),
		store.DocumentStore(),
		index,
	)

	shutdown = func() {
		if err := index.Close(); err != nil {
			logger.Warn("closing vector index: %v", err)
		}
		llm.Close()
		embedder.Close()
		if err := store.Close(); err != nil {
			logger.Warn("closing storage: %v", err)
		}
	}

	return nil
}
