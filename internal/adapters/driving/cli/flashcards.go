package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
)

var flashcardCount int

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Generate flashcards from your documents",
	Long: `Samples indexed content and asks the model for question/answer
pairs. Generated cards are stored and printed.`,
	RunE: runFlashcards,
}

var flashcardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored flashcards",
	RunE:  runFlashcardsList,
}

func init() {
	flashcardsCmd.Flags().IntVarP(&flashcardCount, "count", "n", domain.DefaultFlashcards, "number of cards to generate")
	flashcardsCmd.AddCommand(flashcardsListCmd)
	rootCmd.AddCommand(flashcardsCmd)
}

func runFlashcards(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	cmd.Printf("Generating %d flashcards...\n\n", domain.ClampFlashcardCount(flashcardCount))

	cards, err := studyService.GenerateFlashcards(cmd.Context(), flashcardCount)
	if err != nil {
		return fmt.Errorf("failed to generate flashcards: %w", err)
	}

	printCards(cmd, cards)
	return nil
}

func runFlashcardsList(cmd *cobra.Command, _ []string) error {
	if studyService == nil {
		return errors.New("study service not configured")
	}

	cards, err := studyService.ListFlashcards(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list flashcards: %w", err)
	}

	if len(cards) == 0 {
		cmd.Println("No flashcards yet. Generate some with 'caderno flashcards'.")
		return nil
	}

	printCards(cmd, cards)
	return nil
}

func printCards(cmd *cobra.Command, cards []domain.Flashcard) {
	for i := range cards {
		cmd.Printf("Q%d: %s\n", i+1, cards[i].Question)
		cmd.Printf("A%d: %s\n\n", i+1, cards[i].Answer)
	}
}
