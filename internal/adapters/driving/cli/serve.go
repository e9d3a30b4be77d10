package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/caderno-labs/caderno-cli/internal/adapters/driving/httpapi"
	"github.com/caderno-labs/caderno-cli/internal/core/services"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

var (
	serveAddr     string
	serveInterval time.Duration
	serveNoSync   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API used by external UIs.

Endpoints:
  POST /api/ask          blocking answer
  GET  /api/ask/stream   SSE token stream (?q=question)
  POST /api/ingest       trigger ingestion
  GET  /api/health       health check

While serving, all sources are periodically re-ingested so the index
follows the directories. Disable with --no-sync.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8787", "listen address")
	serveCmd.Flags().DurationVar(&serveInterval, "sync-interval", services.DefaultIngestInterval, "how often to re-ingest all sources")
	serveCmd.Flags().BoolVar(&serveNoSync, "no-sync", false, "disable periodic re-ingestion")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	server, err := httpapi.NewServer(answerService, ingestOrchestrator, serveAddr)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !serveNoSync && ingestOrchestrator != nil {
		scheduler := services.NewScheduler(serveInterval, ingestOrchestrator)
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				logger.Warn("scheduler stopped: %v", err)
			}
		}()
		defer scheduler.Stop()
	}

	cmd.Printf("Caderno API listening on %s\n", serveAddr)
	return server.Start(ctx)
}
