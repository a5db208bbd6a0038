package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// runCommand executes args against rootCmd with rt as the bootstrapped
// runtime. A nil rt makes bootstrap fail. Flags are reset afterwards.
func runCommand(t *testing.T, rt *Runtime, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCommandOpts(t, rt, args...)
	return out, err
}

// runCommandOpts is runCommand that also returns the options bootstrap saw.
func runCommandOpts(t *testing.T, rt *Runtime, args ...string) (string, Options, error) {
	t.Helper()

	var seen Options
	oldBootstrap := bootstrap
	SetBootstrap(func(_ context.Context, opts Options) (*Runtime, error) {
		seen = opts
		if rt == nil {
			return nil, errors.New("no runtime")
		}
		return rt, nil
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		bootstrap = oldBootstrap
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		_ = Shutdown()
		resetFlags(rootCmd)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), seen, err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

type mockIngestor struct {
	mu     sync.Mutex
	roots  []string
	sizes  []int
	report domain.IngestReport
	err    error
}

func (m *mockIngestor) ProcessDirectory(_ context.Context, root string, chunkSize int) (domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = append(m.roots, root)
	m.sizes = append(m.sizes, chunkSize)
	r := m.report
	r.Root = root
	return r, m.err
}

type mockSearch struct {
	query   string
	opts    domain.SearchOptions
	results []domain.SearchResult
	err     error
}

func (m *mockSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

type mockAssistant struct {
	question string
	askOpts  domain.AskOptions
	file     string
	sumOpts  domain.SummarizeOptions
	answer   domain.Answer
	err      error
}

func (m *mockAssistant) Ask(_ context.Context, question string, opts domain.AskOptions) (domain.Answer, error) {
	m.question = question
	m.askOpts = opts
	return m.answer, m.err
}

func (m *mockAssistant) Summarize(_ context.Context, file string, opts domain.SummarizeOptions) (domain.Answer, error) {
	m.file = file
	m.sumOpts = opts
	return m.answer, m.err
}

type mockLibrary struct {
	stats  domain.Statistics
	recent []string
	since  time.Duration
	files  []domain.TrackedFile
	scans  map[string]*domain.ScanRecord
	err    error
}

func (m *mockLibrary) Statistics(context.Context) (domain.Statistics, error) {
	return m.stats, m.err
}

func (m *mockLibrary) RecentFiles(_ context.Context, since time.Duration) ([]string, error) {
	m.since = since
	return m.recent, m.err
}

func (m *mockLibrary) ListFiles(context.Context) ([]domain.TrackedFile, error) {
	return m.files, m.err
}

func (m *mockLibrary) LastScan(_ context.Context, root string) (*domain.ScanRecord, error) {
	return m.scans[root], m.err
}

type mockSettingsStore struct {
	path  string
	saved *domain.Settings
	err   error
}

func (m *mockSettingsStore) Load() domain.Settings { return domain.DefaultSettings() }

func (m *mockSettingsStore) Save(s domain.Settings) error {
	if m.err != nil {
		return m.err
	}
	m.saved = &s
	return nil
}

func (m *mockSettingsStore) Path() string { return m.path }

type mockScheduler struct {
	started chan struct{}
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	close(m.started)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockScheduler) Trigger(context.Context, string) error { return nil }

func testRuntime() *Runtime {
	return &Runtime{
		Settings:      domain.DefaultSettings(),
		SettingsStore: &mockSettingsStore{path: "/tmp/docask/config.toml"},
	}
}
