package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	summarizeMaxPages int
	summarizeModel    string
)

var summarizeCmd = &cobra.Command{
	Use:     "summarize <file name>",
	Aliases: []string{"summarise"},
	Short:   "Summarise one ingested document",
	Long: `Summarises a document using its first pages as context. The document is
named by its file name, for example "annual report.pdf"; see "docask files".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().IntVar(&summarizeMaxPages, "max-pages", 0, "pages used as context (default from settings)")
	summarizeCmd.Flags().StringVar(&summarizeModel, "model", "", "generation model (default from settings)")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	rt, err := requireRuntime("assistant", func(r *Runtime) bool { return r.Assistant != nil })
	if err != nil {
		return err
	}

	answer, err := rt.Assistant.Summarize(commandContext(cmd), strings.Join(args, " "), domain.SummarizeOptions{
		MaxPages: summarizeMaxPages,
		Model:    summarizeModel,
	})
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}
