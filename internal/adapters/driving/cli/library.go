package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var statsSince time.Duration

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what has been ingested",
	Long: `Prints the number of files and chunks in the store, the files first
ingested within --since, and the last scan of each configured directory.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List ingested files",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

func init() {
	statsCmd.Flags().DurationVar(&statsSince, "since", 0, "window for recently added files (default from settings, 7 days)")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(filesCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	rt, err := requireRuntime("library service", func(r *Runtime) bool { return r.Library != nil })
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	stats, err := rt.Library.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}
	cmd.Printf("Files:  %d\n", stats.Files)
	cmd.Printf("Chunks: %d\n", stats.Chunks)

	recent, err := rt.Library.RecentFiles(ctx, statsSince)
	if err != nil {
		return fmt.Errorf("reading recent files: %w", err)
	}
	if len(recent) > 0 {
		cmd.Println()
		cmd.Println("Recently added:")
		for _, name := range recent {
			cmd.Printf("  %s\n", name)
		}
	}

	for _, dir := range rt.Settings.Ingest.Directories {
		rec, err := rt.Library.LastScan(ctx, dir)
		if err != nil {
			return fmt.Errorf("reading scan history: %w", err)
		}
		if rec == nil {
			continue
		}
		cmd.Println()
		cmd.Printf("Last scan of %s:\n", dir)
		cmd.Printf("  at:        %s\n", rec.EndedAt.Local().Format(time.RFC1123))
		cmd.Printf("  processed: %d files, %d chunks\n", rec.FilesProcessed, rec.ChunksWritten)
		if !rec.Success() {
			cmd.Printf("  error:     %s\n", rec.Error)
		}
	}
	return nil
}

func runFiles(cmd *cobra.Command, _ []string) error {
	rt, err := requireRuntime("library service", func(r *Runtime) bool { return r.Library != nil })
	if err != nil {
		return err
	}

	files, err := rt.Library.ListFiles(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}
	if len(files) == 0 {
		cmd.Println("No files ingested. Run \"docask ingest <directory>\" first.")
		return nil
	}

	for i := range files {
		f := files[i]
		cmd.Printf("%-40s %8s  %s\n", f.DisplayName(), humanSize(f.Size), filepath.Dir(f.Path))
	}
	cmd.Printf("\n%d files\n", len(files))
	return nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
