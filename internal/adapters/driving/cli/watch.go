package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docask/internal/adapters/driving/watcher"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/metrics"
)

var (
	watchMetricsAddr string
	watchNoMetrics   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the configured directories ingested",
	Long: `Runs until interrupted. Every configured directory is scanned at start
and again each scan interval, and changes on disk trigger a rescan after a
short quiet period. Prometheus metrics and a health check are served on
the metrics address.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "metrics listen address (default from settings)")
	watchCmd.Flags().BoolVar(&watchNoMetrics, "no-metrics", false, "do not serve metrics")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	rt, err := requireRuntime("rescan scheduler", func(r *Runtime) bool { return r.Scheduler != nil })
	if err != nil {
		return err
	}

	dirs := rt.Settings.Ingest.Directories
	if len(dirs) == 0 {
		return fmt.Errorf("%w: no directories configured (see \"docask settings init\")", domain.ErrInvalidInput)
	}

	w := watcher.New(dirs, rt.Scheduler, watcher.Options{
		Debounce:   rt.Settings.Ingest.WatchDebounce,
		Extensions: rt.Settings.Ingest.Extensions,
	})

	g, ctx := errgroup.WithContext(commandContext(cmd))

	g.Go(func() error {
		return rt.Scheduler.Start(ctx)
	})
	g.Go(func() error {
		return w.Run(ctx)
	})

	addr := watchMetricsAddr
	if addr == "" {
		addr = rt.Settings.Metrics.Addr
	}
	if !watchNoMetrics && addr != "" && rt.Metrics != nil {
		srv := metrics.NewServer(addr, rt.Metrics, rt.HealthChecks)
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	cmd.Printf("Watching %d directories. Press Ctrl+C to stop.\n", len(dirs))

	err = g.Wait()
	if stopErr := rt.Scheduler.Stop(); stopErr != nil {
		logger.Warn("Stopping scheduler: %v", stopErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
