package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var settingsInitForce bool

var settingsCmd = &cobra.Command{
	Use:         "settings",
	Short:       "Show and manage settings",
	Long:        `Shows the effective settings, after environment overrides, and manages the settings file.`,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective settings",
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init [directory...]",
	Short: "Write a settings file with defaults",
	Long: `Writes the default settings to the settings file. Directories given as
arguments are stored as the ingest directories used by "docask watch" and
by "docask ingest" without arguments.`,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	RunE:        runSettingsInit,
}

var settingsPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the settings file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	RunE:        runSettingsPath,
}

func init() {
	settingsInitCmd.Flags().BoolVar(&settingsInitForce, "force", false, "overwrite an existing settings file")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsRuntime() (*Runtime, error) {
	return requireRuntime("settings store", func(r *Runtime) bool { return r.SettingsStore != nil })
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	rt, err := settingsRuntime()
	if err != nil {
		return err
	}
	s := rt.Settings

	cmd.Printf("Settings file: %s\n\n", rt.SettingsStore.Path())

	cmd.Println("[ingest]")
	cmd.Printf("  directories    = %s\n", listOrNone(s.Ingest.Directories))
	cmd.Printf("  chunk_size     = %d\n", s.Ingest.ChunkSize)
	cmd.Printf("  workers        = %d\n", s.Ingest.Workers)
	cmd.Printf("  extensions     = %s\n", listOrNone(s.Ingest.Extensions))
	cmd.Printf("  scan_interval  = %s\n", s.Ingest.ScanInterval)
	cmd.Printf("  watch_debounce = %s\n", s.Ingest.WatchDebounce)
	cmd.Printf("  prune          = %t\n", s.Ingest.Prune)

	cmd.Println("[storage]")
	dataDir := s.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  data_dir       = %s\n", dataDir)

	cmd.Println("[llm]")
	cmd.Printf("  base_url       = %s\n", s.LLM.BaseURL)
	cmd.Printf("  model          = %s\n", s.LLM.Model)
	cmd.Printf("  timeout        = %s\n", s.LLM.Timeout)

	cmd.Println("[embedding]")
	cmd.Printf("  enabled        = %t\n", s.Embedding.Enabled)
	cmd.Printf("  base_url       = %s\n", s.Embedding.BaseURL)
	cmd.Printf("  model          = %s\n", s.Embedding.Model)
	cmd.Printf("  requests/sec   = %g\n", s.Embedding.RequestsPerSecond)

	cmd.Println("[answer]")
	cmd.Printf("  top_k          = %d\n", s.Answer.TopK)
	cmd.Printf("  max_context    = %d\n", s.Answer.MaxContextChars)
	cmd.Printf("  search_mode    = %s\n", s.Answer.SearchMode)
	cmd.Printf("  summary_pages  = %d\n", s.Answer.SummaryMaxPages)

	cmd.Println("[log]")
	cmd.Printf("  level          = %s\n", s.Log.Level)

	cmd.Println("[metrics]")
	addr := s.Metrics.Addr
	if addr == "" {
		addr = "(disabled)"
	}
	cmd.Printf("  addr           = %s\n", addr)
	return nil
}

func runSettingsInit(cmd *cobra.Command, args []string) error {
	rt, err := settingsRuntime()
	if err != nil {
		return err
	}
	path := rt.SettingsStore.Path()

	if !settingsInitForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking settings file: %w", err)
		}
	}

	s := domain.DefaultSettings()
	s.Ingest.Directories = args
	if err := rt.SettingsStore.Save(s); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	cmd.Printf("Wrote %s\n", path)
	return nil
}

func runSettingsPath(cmd *cobra.Command, _ []string) error {
	rt, err := settingsRuntime()
	if err != nil {
		return err
	}
	cmd.Println(rt.SettingsStore.Path())
	return nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
