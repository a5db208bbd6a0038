package domain

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Defaults applied when a setting is missing or out of range.
const (
	DefaultChunkSize        = 1000
	DefaultTopK             = 5
	MaxTopK                 = 10
	DefaultMaxContextChars  = 2000
	DefaultSummaryMaxPages  = 10
	DefaultLLMModel         = "llama3"
	DefaultEmbeddingModel   = "nomic-embed-text"
	DefaultOllamaURL        = "http://localhost:11434"
	DefaultScanInterval     = 72 * time.Hour
	DefaultWatchDebounce    = 2 * time.Second
	DefaultLLMTimeout       = 5 * time.Minute
	DefaultRecentWindow     = 7 * 24 * time.Hour
	DefaultEmbeddingRPS     = 10.0
	DefaultLogLevel         = "info"
	DefaultMetricsAddr      = "127.0.0.1:9464"
	defaultMaxIngestWorkers = 8
)

// DefaultExtensions are the file extensions ingested when none are configured.
func DefaultExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md"}
}

// IngestSettings controls directory ingestion.
type IngestSettings struct {
	// Directories are the roots scanned by the rescan scheduler and watcher.
	Directories []string

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Workers bounds the per-file worker pool.
	Workers int

	// Extensions are the lowercase file extensions to ingest, with leading dot.
	Extensions []string

	// ScanInterval is the period of scheduled rescans.
	ScanInterval time.Duration

	// WatchDebounce is the quiet period before a watcher-triggered rescan.
	WatchDebounce time.Duration

	// Prune removes tracked files that no longer exist on disk.
	Prune bool
}

// AcceptsExtension reports whether ext (any case, with dot) is enabled.
func (s IngestSettings) AcceptsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range s.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// StorageSettings locates the chunk store.
type StorageSettings struct {
	// DataDir holds the SQLite database. Empty means ~/.docask/data.
	DataDir string
}

// LLMSettings configures the generation oracle.
type LLMSettings struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// EmbeddingSettings configures the optional embedding oracle.
type EmbeddingSettings struct {
	Enabled           bool
	BaseURL           string
	Model             string
	RequestsPerSecond float64
}

// AnswerSettings configures the answer orchestrator.
type AnswerSettings struct {
	// TopK is the default number of chunks retrieved per question.
	TopK int

	// MaxContextChars caps the assembled context.
	MaxContextChars int

	// SearchMode is the default ranking strategy.
	SearchMode SearchMode

	// SummaryMaxPages caps the pages used for document summaries.
	SummaryMaxPages int

	// DebugSearch logs ranking diagnostics for every question.
	DebugSearch bool
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string
	Pretty bool
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	// Addr is the listen address. Empty disables the endpoint.
	Addr string
}

// Settings is the explicit configuration value passed to services.
// It is loaded once at the edge and never read from ambient state.
type Settings struct {
	Ingest    IngestSettings
	Storage   StorageSettings
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Answer    AnswerSettings
	Log       LogSettings
	Metrics   MetricsSettings
}

// DefaultSettings returns settings with sensible defaults.
// The embedding oracle is disabled by default.
func DefaultSettings() Settings {
	return Settings{
		Ingest: IngestSettings{
			ChunkSize:     DefaultChunkSize,
			Workers:       defaultWorkers(),
			Extensions:    DefaultExtensions(),
			ScanInterval:  DefaultScanInterval,
			WatchDebounce: DefaultWatchDebounce,
		},
		LLM: LLMSettings{
			BaseURL: DefaultOllamaURL,
			Model:   DefaultLLMModel,
			Timeout: DefaultLLMTimeout,
		},
		Embedding: EmbeddingSettings{
			BaseURL:           DefaultOllamaURL,
			Model:             DefaultEmbeddingModel,
			RequestsPerSecond: DefaultEmbeddingRPS,
		},
		Answer: AnswerSettings{
			TopK:            DefaultTopK,
			MaxContextChars: DefaultMaxContextChars,
			SearchMode:      SearchModeLexical,
			SummaryMaxPages: DefaultSummaryMaxPages,
		},
		Log: LogSettings{
			Level:  DefaultLogLevel,
			Pretty: true,
		},
		Metrics: MetricsSettings{
			Addr: DefaultMetricsAddr,
		},
	}
}

// Normalise replaces missing or out-of-range values with defaults.
// Extensions are lowercased and given a leading dot.
func (s Settings) Normalise() Settings {
	d := DefaultSettings()

	if s.Ingest.ChunkSize <= 0 {
		s.Ingest.ChunkSize = d.Ingest.ChunkSize
	}
	if s.Ingest.Workers <= 0 {
		s.Ingest.Workers = d.Ingest.Workers
	}
	if len(s.Ingest.Extensions) == 0 {
		s.Ingest.Extensions = d.Ingest.Extensions
	} else {
		exts := make([]string, 0, len(s.Ingest.Extensions))
		for _, e := range s.Ingest.Extensions {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		s.Ingest.Extensions = exts
	}
	if s.Ingest.ScanInterval <= 0 {
		s.Ingest.ScanInterval = d.Ingest.ScanInterval
	}
	if s.Ingest.WatchDebounce <= 0 {
		s.Ingest.WatchDebounce = d.Ingest.WatchDebounce
	}

	if s.LLM.BaseURL == "" {
		s.LLM.BaseURL = d.LLM.BaseURL
	}
	if s.LLM.Model == "" {
		s.LLM.Model = d.LLM.Model
	}
	if s.LLM.Timeout <= 0 {
		s.LLM.Timeout = d.LLM.Timeout
	}

	if s.Embedding.BaseURL == "" {
		s.Embedding.BaseURL = d.Embedding.BaseURL
	}
	if s.Embedding.Model == "" {
		s.Embedding.Model = d.Embedding.Model
	}
	if s.Embedding.RequestsPerSecond <= 0 {
		s.Embedding.RequestsPerSecond = d.Embedding.RequestsPerSecond
	}

	if s.Answer.TopK <= 0 {
		s.Answer.TopK = d.Answer.TopK
	}
	if s.Answer.MaxContextChars <= 0 {
		s.Answer.MaxContextChars = d.Answer.MaxContextChars
	}
	if !s.Answer.SearchMode.IsValid() {
		s.Answer.SearchMode = d.Answer.SearchMode
	}
	if s.Answer.SummaryMaxPages <= 0 {
		s.Answer.SummaryMaxPages = d.Answer.SummaryMaxPages
	}

	if s.Log.Level == "" {
		s.Log.Level = d.Log.Level
	}

	return s
}

// Validate reports settings that cannot be normalised silently.
// It is used before saving, never when loading.
func (s Settings) Validate() error {
	if s.Ingest.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk size must not be negative", ErrInvalidInput)
	}
	if s.Answer.SearchMode != "" && !s.Answer.SearchMode.IsValid() {
		return fmt.Errorf("%w: unknown search mode %q", ErrInvalidInput, s.Answer.SearchMode)
	}
	if s.Answer.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must be at most %d", ErrInvalidInput, MaxTopK)
	}
	if s.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: embedding requests_per_second must not be negative", ErrInvalidInput)
	}
	return nil
}

// ClampTopK applies the default and the internal cap to a requested K.
func ClampTopK(requested, fallback int) int {
	k := requested
	if k <= 0 {
		k = fallback
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if k > MaxTopK {
		k = MaxTopK
	}
	return k
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > defaultMaxIngestWorkers {
		n = defaultMaxIngestWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}
