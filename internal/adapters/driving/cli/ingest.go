package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	ingestChunkSize int
	ingestPrune     bool
	ingestDryRun    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory...]",
	Short: "Ingest documents from directories",
	Long: `Walks each directory, extracts text from supported documents and stores
it as chunks. Files whose content has not changed since the last run are
skipped. Without arguments the directories from the settings file are used.

Use --dry-run to see what would be ingested without touching the store.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "maximum chunk length in characters (default from settings)")
	ingestCmd.Flags().BoolVar(&ingestPrune, "prune", false, "remove files that no longer exist from the store")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "process files into a temporary in-memory store")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	rt, err := requireRuntime("ingest service", func(r *Runtime) bool { return r.Ingestor != nil })
	if err != nil {
		return err
	}

	dirs := args
	if len(dirs) == 0 {
		dirs = rt.Settings.Ingest.Directories
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%w: no directories given and none configured", domain.ErrInvalidInput)
	}

	ctx := commandContext(cmd)
	for _, dir := range dirs {
		report, err := rt.Ingestor.ProcessDirectory(ctx, dir, ingestChunkSize)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", dir, err)
		}
		printReport(cmd, report)
	}

	if ingestDryRun {
		cmd.Println("Dry run: nothing was written.")
	}
	return nil
}

func printReport(cmd *cobra.Command, r domain.IngestReport) {
	cmd.Printf("%s\n", r.Root)
	cmd.Printf("  files seen:     %d\n", r.FilesSeen)
	cmd.Printf("  new:            %d\n", r.FilesNew)
	cmd.Printf("  changed:        %d\n", r.FilesChanged)
	cmd.Printf("  unchanged:      %d\n", r.FilesUnchanged)
	if r.FilesEmpty > 0 {
		cmd.Printf("  empty:          %d\n", r.FilesEmpty)
	}
	if r.FilesFailed > 0 {
		cmd.Printf("  failed:         %d\n", r.FilesFailed)
	}
	if r.FilesPruned > 0 {
		cmd.Printf("  pruned:         %d\n", r.FilesPruned)
	}
	cmd.Printf("  chunks written: %d\n", r.ChunksWritten)
	cmd.Printf("  took:           %s\n", r.Duration.Round(time.Millisecond))
}
