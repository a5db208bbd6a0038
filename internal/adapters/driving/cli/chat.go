package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docask/internal/adapters/driving/tui"
	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	chatMode  string
	chatTopK  int
	chatModel string
)

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question and answer session",
	Long: `Opens a terminal chat over your documents. Type a question and press
Enter. "/summarize <file name>" summarises one document. Esc cancels the
question being answered.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "retrieval mode: lexical or vector")
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of chunks used as context (max 10)")
	chatCmd.Flags().StringVar(&chatModel, "model", "", "generation model (default from settings)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if !isTerminal() {
		return errors.New("chat needs an interactive terminal; use \"docask ask\" instead")
	}

	rt, err := requireRuntime("assistant", func(r *Runtime) bool { return r.Assistant != nil })
	if err != nil {
		return err
	}

	mode, err := parseMode(chatMode)
	if err != nil {
		return err
	}

	chat, err := tui.NewApp(&tui.Ports{
		Assistant: rt.Assistant,
		Library:   rt.Library,
	})
	if err != nil {
		return err
	}

	return chat.
		WithContext(commandContext(cmd)).
		WithAskOptions(domain.AskOptions{Mode: mode, TopK: chatTopK, Model: chatModel}).
		Run()
}
