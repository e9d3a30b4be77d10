package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mindmapOutput string

var mindmapCmd = &cobra.Command{
	Use:   "mindmap",
	Short: "Build a mind map of your documents",
	Long: `Extracts key concepts from indexed content and renders them as
markmap-compatible markdown. Pipe the output into a markmap renderer
or save it with --output.`,
	RunE: runMindmap,
}

func init() {
	mindmapCmd.Flags().StringVarP(&mindmapOutput, "output", "o", "", "write the mind map to a file instead of stdout")
	rootCmd.AddCommand(mindmapCmd)
}

func runMindmap(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	mindMap, err := studyService.BuildMindMap(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build mind map: %w", err)
	}

	if mindmapOutput != "" {
		if err := os.WriteFile(mindmapOutput, []byte(mindMap.Markdown), 0o644); err != nil {
			return fmt.Errorf("failed to write mind map: %w", err)
		}
		cmd.Printf("Mind map with %d concepts written to %s\n", len(mindMap.Concepts), mindmapOutput)
		return nil
	}

	cmd.Print(mindMap.Markdown)
	return nil
}
