package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/caderno-labs/caderno-cli/internal/core/ports/driving"
)

var (
	syncWatch   bool
	syncReindex bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Ingest documents from sources",
	Long: `Ingests documents from configured sources into the index.
If a source ID is provided, only that source is ingested. Otherwise,
all sources are ingested. Unchanged documents are skipped.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncWatch, "watch", "w", false, "keep watching the source directory for changes")
	syncCmd.Flags().BoolVar(&syncReindex, "reindex", false, "rebuild the vector index from stored chunks")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if ingestOrchestrator == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()

	if syncReindex {
		cmd.Println("Rebuilding vector index from stored chunks...")
		n, err := ingestOrchestrator.Reindex(ctx)
		if err != nil {
			return fmt.Errorf("reindex failed: %w", err)
		}
		cmd.Printf("Restored %d vectors.\n", n)
		return nil
	}

	if syncWatch {
		if len(args) == 0 {
			return errors.New("--watch requires a source ID")
		}
		cmd.Printf("Watching source %s. Press Ctrl+C to stop.\n", args[0])
		err := ingestOrchestrator.Watch(ctx, args[0])
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watch failed: %w", err)
		}
		return nil
	}

	if len(args) > 0 {
		sourceID := args[0]
		cmd.Printf("Ingesting source: %s...\n", sourceID)

		report, err := ingestWithProgress(ctx, cmd, ingestOrchestrator, sourceID)
		if err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}

		printReport(cmd, report)
		return nil
	}

	cmd.Println("Ingesting all sources...")
	reports, err := ingestOrchestrator.IngestAll(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	for i := range reports {
		printReport(cmd, &reports[i])
	}
	return nil
}

// ingestWithProgress runs an ingestion pass while displaying progress.
func ingestWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	orch driving.IngestOrchestrator,
	sourceID string,
) (*driving.IngestReport, error) {
	type result struct {
		report *driving.IngestReport
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		report, err := orch.Ingest(ctx, sourceID)
		resCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case res := <-resCh:
			if lastCount > 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			// Best effort; status errors are ignored
			status, err := orch.Status(ctx, sourceID)
			if err == nil && status != nil && status.DocumentsProcessed > lastCount {
				cmd.Printf("\rProcessing... %d documents", status.DocumentsProcessed)
				lastCount = status.DocumentsProcessed
			}
		}
	}
}

func printReport(cmd *cobra.Command, report *driving.IngestReport) {
	cmd.Printf("Source %s: %d documents ingested, %d unchanged, %d chunks indexed, %d reused\n",
		report.SourceID,
		report.DocumentsProcessed,
		report.DocumentsSkipped,
		report.ChunksIndexed,
		report.ChunksReused,
	)
	if len(report.Failures) > 0 {
		cmd.Printf("  %d files failed:\n", len(report.Failures))
		for _, f := range report.Failures {
			cmd.Printf("    %s: %v\n", f.URI, f.Err)
		}
	}
}
