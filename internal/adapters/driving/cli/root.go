// Package cli provides the cobra command tree for docask.
// It is a driving adapter: commands call core services through the
// driving ports in a Runtime built by the composition root.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/metrics"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Command annotations controlling what setupRuntime builds.
const (
	annotationSettingsOnly = "docask/settings-only"
	annotationNoRuntime    = "docask/no-runtime"
)

// Options are the global flags handed to the bootstrap function.
type Options struct {
	// ConfigPath overrides the settings file location.
	ConfigPath string

	// Verbose enables debug logging.
	Verbose bool

	// SettingsOnly skips opening the chunk store and oracles.
	SettingsOnly bool

	// DryRun backs ingestion with an in-memory store.
	DryRun bool

	// Prune makes ingestion delete files that vanished from disk.
	Prune bool
}

// Runtime holds the services a command may use.
// Fields other than Settings and SettingsStore are nil when
// Options.SettingsOnly was set.
type Runtime struct {
	Settings      domain.Settings
	SettingsStore driven.SettingsStore

	Ingestor  driving.Ingestor
	Search    driving.SearchService
	Assistant driving.Assistant
	Library   driving.LibraryService
	Scheduler driving.RescanScheduler

	Metrics      *metrics.Metrics
	HealthChecks map[string]metrics.HealthFunc

	// Close releases the store and oracle connections.
	Close func() error
}

// Bootstrap builds a Runtime from the global flags.
type Bootstrap func(ctx context.Context, opts Options) (*Runtime, error)

var (
	configPath string
	verbose    bool

	bootstrap Bootstrap
	app       *Runtime
)

// SetBootstrap sets the function that wires services for each command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

var rootCmd = &cobra.Command{
	Use:   "docask",
	Short: "Ask questions about your local documents",
	Long: `docask ingests PDF, Word and text documents from local directories,
splits them into chunks and answers questions about them with a local
Ollama model, citing the files and pages it used.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupRuntime,
	PersistentPostRunE: teardownRuntime,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ~/.docask/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupRuntime(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoRuntime] == "true" {
		return nil
	}
	if bootstrap == nil {
		return errors.New("runtime not configured")
	}

	opts := Options{
		ConfigPath:   configPath,
		Verbose:      verbose,
		SettingsOnly: cmd.Annotations[annotationSettingsOnly] == "true",
	}
	opts.DryRun = boolFlag(cmd, "dry-run")
	opts.Prune = boolFlag(cmd, "prune")

	rt, err := bootstrap(commandContext(cmd), opts)
	if err != nil {
		return fmt.Errorf("starting docask: %w", err)
	}
	app = rt
	return nil
}

// Shutdown releases the runtime if a failed command left it open.
func Shutdown() error {
	return teardownRuntime(nil, nil)
}

func teardownRuntime(_ *cobra.Command, _ []string) error {
	rt := app
	app = nil
	if rt == nil || rt.Close == nil {
		return nil
	}
	return rt.Close()
}

// boolFlag reads a boolean flag that only some commands define.
func boolFlag(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Value.String() == "true"
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// requireRuntime returns the runtime or an error naming the missing service.
func requireRuntime(service string, present func(*Runtime) bool) (*Runtime, error) {
	if app == nil || !present(app) {
		return nil, fmt.Errorf("%s not configured", service)
	}
	return app, nil
}
