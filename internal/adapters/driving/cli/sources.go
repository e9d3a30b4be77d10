package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage ingestion directories",
	Long:  `Add, list, or remove the directories Caderno ingests documents from.`,
	RunE:  runSourcesList,
}

var sourcesAddCmd = &cobra.Command{
	Use:   "add [name] [path]",
	Short: "Register a directory as a source",
	Args:  cobra.ExactArgs(2),
	RunE:  runSourcesAdd,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourcesList,
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source and its indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesRemove,
}

func init() {
	sourcesCmd.AddCommand(sourcesAddCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesRemoveCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	source, err := sourceService.Add(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("Added source %s (%s)\n", source.Name, source.ID)
	cmd.Printf("  Path: %s\n", source.Path)
	cmd.Printf("Run 'caderno sync %s' to ingest it.\n", source.ID)
	return nil
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources configured. Add one with 'caderno sources add'.")
		return nil
	}

	cmd.Println("Sources:")
	for i := range sources {
		cmd.Printf("  %s  %s\n", sources[i].ID, sources[i].Name)
		cmd.Printf("      Path: %s\n", sources[i].Path)
	}
	return nil
}

func runSourcesRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if err := sourceService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Removed source %s and its indexed documents.\n", args[0])
	return nil
}
