package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tariffnom/tariffnom/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the HS code assistant",
	Long: `Open an interactive session with the HS code assistant. Describe your
product to receive candidate codes; answer disambiguation questions with
/answer, confirm a suggestion with /use, and control resolver-side
logging with /consent.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	helper := app.Assistant

	if !helper.IsOpen() {
		helper.Toggle(ctx)
	}

	rendered := 0
	rendered = renderTranscript(helper, rendered)
	fmt.Println(`Commands: /answer <question-id> <option>, /use, /consent on|off, /quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			helper.Toggle(ctx)
			return nil
		case line == "/use":
			if err := helper.UseCode(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("HS code applied to the transaction form.")
			return nil
		case strings.HasPrefix(line, "/consent"):
			on := strings.TrimSpace(strings.TrimPrefix(line, "/consent")) == "on"
			helper.SetConsent(on)
			fmt.Printf("Consent logging: %t\n", on)
			continue
		case strings.HasPrefix(line, "/answer "):
			parts := strings.SplitN(strings.TrimPrefix(line, "/answer "), " ", 2)
			if len(parts) != 2 {
				fmt.Println("Usage: /answer <question-id> <option>")
				continue
			}
			if err := helper.AnswerQuestion(ctx, parts[0], parts[1]); err != nil {
				fmt.Println(err)
				continue
			}
		default:
			if err := helper.SendTurn(ctx, line); err != nil {
				switch {
				case errors.Is(err, assistant.ErrEmptyMessage):
					continue
				case errors.Is(err, assistant.ErrQuestionPending):
					fmt.Println("Please answer the pending question with /answer first.")
					continue
				case errors.Is(err, assistant.ErrTurnInFlight):
					fmt.Println("Still waiting for the previous answer.")
					continue
				}
				// resolver failures already appended a transcript message
			}
		}

		rendered = renderTranscript(helper, rendered)
		if candidate, ok := helper.ConfirmableCode(); ok {
			fmt.Printf("[Type /use to apply HS code %s]\n", candidate.HsCode)
		}
		for _, q := range helper.PendingQuestions() {
			fmt.Printf("[Answer with /answer %s <option>]\n", q.ID)
		}
	}
	return scanner.Err()
}

// renderTranscript prints messages appended since the last call and
// returns the new high-water mark.
func renderTranscript(helper *assistant.Assistant, from int) int {
	messages := helper.Messages()
	for _, m := range messages[from:] {
		prefix := app.Theme.Accent + "[assistant]" + app.Theme.Reset
		if m.Role == assistant.RoleUser {
			prefix = app.Theme.TextMuted + "[you]" + app.Theme.Reset
		}
		fmt.Printf("%s %s\n", prefix, m.Content)
	}
	return len(messages)
}
