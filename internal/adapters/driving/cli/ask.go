package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	askMode  string
	askTopK  int
	askModel string
	askDebug bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from your documents",
	Long: `Retrieves the chunks most relevant to the question and asks the local
model to answer using only them. The files and pages used are listed under
the answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", "", "retrieval mode: lexical or vector (default from settings)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks used as context (max 10)")
	askCmd.Flags().StringVar(&askModel, "model", "", "generation model (default from settings)")
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "log ranking diagnostics")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := requireRuntime("assistant", func(r *Runtime) bool { return r.Assistant != nil })
	if err != nil {
		return err
	}

	mode, err := parseMode(askMode)
	if err != nil {
		return err
	}

	answer, err := rt.Assistant.Ask(commandContext(cmd), strings.Join(args, " "), domain.AskOptions{
		Mode:  mode,
		TopK:  askTopK,
		Model: askModel,
		Debug: askDebug,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, a domain.Answer) {
	cmd.Println(a.Text)
	if len(a.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, src := range a.Sources {
		cmd.Printf("- %s\n", src)
	}
}

// parseMode validates a --mode flag. Empty means the configured default.
func parseMode(s string) (domain.SearchMode, error) {
	if s == "" {
		return "", nil
	}
	mode := domain.SearchMode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("%w: unknown mode %q (use lexical or vector)", domain.ErrInvalidInput, s)
	}
	return mode, nil
}
