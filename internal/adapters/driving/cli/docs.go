package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var docsSource string

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List indexed documents",
	Long:  `Lists indexed documents, optionally filtered by source.`,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

func init() {
	docsCmd.Flags().StringVarP(&docsSource, "source", "s", "", "only list documents of this source")
	docsCmd.AddCommand(docsShowCmd)
	rootCmd.AddCommand(docsCmd)
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	docs, err := documentStore.ListDocuments(cmd.Context(), docsSource)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed. Run 'caderno sync' first.")
		return nil
	}

	cmd.Printf("%d documents:\n", len(docs))
	for i := range docs {
		title := docs[i].Title
		if title == "" {
			title = docs[i].URI
		}
		cmd.Printf("  %s  %s\n", docs[i].ID, title)
	}
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	ctx := cmd.Context()
	doc, err := documentStore.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	chunks, err := documentStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	cmd.Printf("ID:      %s\n", doc.ID)
	cmd.Printf("Title:   %s\n", doc.Title)
	cmd.Printf("URI:     %s\n", doc.URI)
	cmd.Printf("Source:  %s\n", doc.SourceID)
	if doc.Pages > 0 {
		cmd.Printf("Pages:   %d\n", doc.Pages)
	}
	cmd.Printf("Chunks:  %d\n", len(chunks))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
