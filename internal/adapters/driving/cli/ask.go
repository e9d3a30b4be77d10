package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/caderno-labs/caderno-cli/internal/core/domain"
	"github.com/caderno-labs/caderno-cli/internal/logger"
)

// defaultConversation is the conversation all ask invocations share.
const defaultConversation = "default"

// historyWindow is how many recent turns are folded into the query.
const historyWindow = 6

var (
	askNoHistory   bool
	askNoStream    bool
	askContextOnly bool
	askClear       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using the most relevant indexed chunks as
context. The answer streams to stdout as it is generated.

Recent conversation turns are folded into retrieval so follow-up
questions work; use --no-history for a standalone question.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNoHistory, "no-history", false, "ignore and don't record conversation history")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "wait for the full answer instead of streaming")
	askCmd.Flags().BoolVar(&askContextOnly, "context-only", false, "print the retrieved chunks without generating an answer")
	askCmd.Flags().BoolVar(&askClear, "clear", false, "clear conversation history before asking")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	question := args[0]
	ctx := cmd.Context()

	if askClear && chatStore != nil {
		if err := chatStore.ClearConversation(ctx, defaultConversation); err != nil {
			return fmt.Errorf("clearing conversation: %w", err)
		}
	}

	query := domain.Query{Text: question}
	if !askNoHistory && chatStore != nil {
		history, err := chatStore.RecentMessages(ctx, defaultConversation, historyWindow)
		if err != nil {
			logger.Warn("loading conversation history: %v", err)
		} else {
			query.History = history
		}
	}

	if askContextOnly {
		return printRetrievedContext(cmd, query)
	}

	var answer string
	var err error
	if askNoStream {
		answer, err = answerService.Answer(ctx, query)
		if err != nil {
			return fmt.Errorf("answering: %w", err)
		}
		cmd.Println(answer)
	} else {
		answer, err = streamAnswer(cmd, query)
		if err != nil {
			return err
		}
	}

	if !askNoHistory && chatStore != nil {
		saveTurn(cmd, question, answer)
	}

	return nil
}

// streamAnswer prints tokens as they arrive and returns the full text.
func streamAnswer(cmd *cobra.Command, query domain.Query) (string, error) {
	stream, err := answerService.AnswerStream(cmd.Context(), query)
	if err != nil {
		return "", fmt.Errorf("answering: %w", err)
	}
	defer stream.Close()

	var full string
	for {
		tok, ok := stream.Next(cmd.Context())
		if !ok {
			break
		}
		cmd.Print(tok.Content)
		full += tok.Content
	}
	cmd.Println()

	if err := stream.Err(); err != nil {
		return full, fmt.Errorf("generation interrupted: %w", err)
	}
	return full, nil
}

func printRetrievedContext(cmd *cobra.Command, query domain.Query) error {
	result, err := answerService.Retrieve(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("retrieving: %w", err)
	}

	if result.Empty() {
		cmd.Println("No relevant context found.")
		return nil
	}

	if result.Rewritten != "" && result.Rewritten != query.Text {
		cmd.Printf("Query rewritten to: %s\n\n", result.Rewritten)
	}

	for i, rc := range result.Chunks {
		cmd.Printf("[%d] %s (%.3f)", i+1, rc.DocumentTitle, rc.Score)
		if rc.Chunk.Page > 0 {
			cmd.Printf(", page %d", rc.Chunk.Page)
		}
		cmd.Println()
		cmd.Println(rc.Chunk.Content)
		cmd.Println()
	}

	return nil
}

// saveTurn records the question and answer. Failures are logged, not
// surfaced; the answer was already delivered.
func saveTurn(cmd *cobra.Command, question, answer string) {
	now := time.Now()
	msgs := []domain.ChatMessage{
		{
			ID:             uuid.NewString(),
			ConversationID: defaultConversation,
			Role:           domain.RoleUser,
			Content:        question,
			CreatedAt:      now,
		},
		{
			ID:             uuid.NewString(),
			ConversationID: defaultConversation,
			Role:           domain.RoleAssistant,
			Content:        answer,
			CreatedAt:      now.Add(time.Millisecond),
		},
	}
	for _, msg := range msgs {
		if err := chatStore.SaveMessage(cmd.Context(), msg); err != nil {
			logger.Warn("saving conversation turn: %v", err)
			return
		}
	}
}
