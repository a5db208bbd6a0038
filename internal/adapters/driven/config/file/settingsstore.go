package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// Environment variables that override values from the settings file.
const (
	EnvOllamaURL  = "DOCASK_OLLAMA_URL"
	EnvLLMModel   = "DOCASK_LLM_MODEL"
	EnvDataDir    = "DOCASK_DATA_DIR"
	EnvEmbedModel = "DOCASK_EMBED_MODEL"
)

// DefaultDir returns ~/.docask.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".docask"), nil
}

// SettingsStore reads and writes domain.Settings as TOML or YAML.
// The format is chosen by the file extension; anything other than
// .yaml or .yml is TOML.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
	lookup   func(string) (string, bool)
}

// NewSettingsStore creates a store for the given file.
// If path is empty, defaults to ~/.docask/config.toml.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	return &SettingsStore{
		filePath: path,
		lookup:   os.LookupEnv,
	}, nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load returns normalised settings. A missing file yields defaults; a file
// that cannot be read or parsed yields defaults and a warning.
func (s *SettingsStore) Load() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		logger.Warn("reading settings %s: %v; using defaults", s.filePath, err)
	default:
		var fs fileSettings
		if err := s.unmarshal(data, &fs); err != nil {
			logger.Warn("parsing settings %s: %v; using defaults", s.filePath, err)
		} else {
			settings = fs.toDomain()
		}
	}

	s.applyEnv(&settings)
	return settings.Normalise()
}

// Save validates and writes settings with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.marshal(fromDomain(settings))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

func (s *SettingsStore) isYAML() bool {
	switch strings.ToLower(filepath.Ext(s.filePath)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (s *SettingsStore) unmarshal(data []byte, fs *fileSettings) error {
	if s.isYAML() {
		return yaml.Unmarshal(data, fs)
	}
	return toml.Unmarshal(data, fs)
}

func (s *SettingsStore) marshal(fs fileSettings) ([]byte, error) {
	if s.isYAML() {
		return yaml.Marshal(fs)
	}
	return toml.Marshal(fs)
}

// applyEnv overlays process environment, then a .env file beside the
// settings file. Process environment wins.
func (s *SettingsStore) applyEnv(settings *domain.Settings) {
	dotenv, err := godotenv.Read(filepath.Join(filepath.Dir(s.filePath), ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("reading .env: %v", err)
	}

	get := func(key string) string {
		if v, ok := s.lookup(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	if v := get(EnvOllamaURL); v != "" {
		settings.LLM.BaseURL = v
		settings.Embedding.BaseURL = v
	}
	if v := get(EnvLLMModel); v != "" {
		settings.LLM.Model = v
	}
	if v := get(EnvEmbedModel); v != "" {
		settings.Embedding.Model = v
	}
	if v := get(EnvDataDir); v != "" {
		settings.Storage.DataDir = v
	}
}

// ==================== File format ====================

type fileSettings struct {
	Ingest    ingestSection    `toml:"ingest" yaml:"ingest"`
	Storage   storageSection   `toml:"storage" yaml:"storage"`
	LLM       llmSection       `toml:"llm" yaml:"llm"`
	Embedding embeddingSection `toml:"embedding" yaml:"embedding"`
	Answer    answerSection    `toml:"answer" yaml:"answer"`
	Log       logSection       `toml:"log" yaml:"log"`
	Metrics   metricsSection   `toml:"metrics" yaml:"metrics"`
}

type ingestSection struct {
	Directories   []string `toml:"directories" yaml:"directories"`
	ChunkSize     int      `toml:"chunk_size" yaml:"chunk_size"`
	Workers       int      `toml:"workers" yaml:"workers"`
	Extensions    []string `toml:"extensions" yaml:"extensions"`
	ScanInterval  string   `toml:"scan_interval" yaml:"scan_interval"`
	WatchDebounce string   `toml:"watch_debounce" yaml:"watch_debounce"`
	Prune         bool     `toml:"prune" yaml:"prune"`
}

type storageSection struct {
	DataDir string `toml:"data_dir" yaml:"data_dir"`
}

type llmSection struct {
	BaseURL string `toml:"base_url" yaml:"base_url"`
	Model   string `toml:"model" yaml:"model"`
	Timeout string `toml:"timeout" yaml:"timeout"`
}

type embeddingSection struct {
	Enabled           bool    `toml:"enabled" yaml:"enabled"`
	BaseURL           string  `toml:"base_url" yaml:"base_url"`
	Model             string  `toml:"model" yaml:"model"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

type answerSection struct {
	TopK            int    `toml:"top_k" yaml:"top_k"`
	MaxContextChars int    `toml:"max_context_chars" yaml:"max_context_chars"`
	SearchMode      string `toml:"search_mode" yaml:"search_mode"`
	SummaryMaxPages int    `toml:"summary_max_pages" yaml:"summary_max_pages"`
	DebugSearch     bool   `toml:"debug_search" yaml:"debug_search"`
}

type logSection struct {
	Level  string `toml:"level" yaml:"level"`
	Pretty *bool  `toml:"pretty" yaml:"pretty"`
}

type metricsSection struct {
	Addr string `toml:"addr" yaml:"addr"`
}

func (fs fileSettings) toDomain() domain.Settings {
	pretty := true
	if fs.Log.Pretty != nil {
		pretty = *fs.Log.Pretty
	}

	return domain.Settings{
		Ingest: domain.IngestSettings{
			Directories:   fs.Ingest.Directories,
			ChunkSize:     fs.Ingest.ChunkSize,
			Workers:       fs.Ingest.Workers,
			Extensions:    fs.Ingest.Extensions,
			ScanInterval:  parseDuration("ingest.scan_interval", fs.Ingest.ScanInterval),
			WatchDebounce: parseDuration("ingest.watch_debounce", fs.Ingest.WatchDebounce),
			Prune:         fs.Ingest.Prune,
		},
		Storage: domain.StorageSettings{DataDir: fs.Storage.DataDir},
		LLM: domain.LLMSettings{
			BaseURL: fs.LLM.BaseURL,
			Model:   fs.LLM.Model,
			Timeout: parseDuration("llm.timeout", fs.LLM.Timeout),
		},
		Embedding: domain.EmbeddingSettings{
			Enabled:           fs.Embedding.Enabled,
			BaseURL:           fs.Embedding.BaseURL,
			Model:             fs.Embedding.Model,
			RequestsPerSecond: fs.Embedding.RequestsPerSecond,
		},
		Answer: domain.AnswerSettings{
			TopK:            fs.Answer.TopK,
			MaxContextChars: fs.Answer.MaxContextChars,
			SearchMode:      domain.SearchMode(strings.ToLower(fs.Answer.SearchMode)),
			SummaryMaxPages: fs.Answer.SummaryMaxPages,
			DebugSearch:     fs.Answer.DebugSearch,
		},
		Log:     domain.LogSettings{Level: fs.Log.Level, Pretty: pretty},
		Metrics: domain.MetricsSettings{Addr: fs.Metrics.Addr},
	}
}

func fromDomain(s domain.Settings) fileSettings {
	pretty := s.Log.Pretty
	return fileSettings{
		Ingest: ingestSection{
			Directories:   s.Ingest.Directories,
			ChunkSize:     s.Ingest.ChunkSize,
			Workers:       s.Ingest.Workers,
			Extensions:    s.Ingest.Extensions,
			ScanInterval:  formatDuration(s.Ingest.ScanInterval),
			WatchDebounce: formatDuration(s.Ingest.WatchDebounce),
			Prune:         s.Ingest.Prune,
		},
		Storage: storageSection{DataDir: s.Storage.DataDir},
		LLM: llmSection{
			BaseURL: s.LLM.BaseURL,
			Model:   s.LLM.Model,
			Timeout: formatDuration(s.LLM.Timeout),
		},
		Embedding: embeddingSection{
			Enabled:           s.Embedding.Enabled,
			BaseURL:           s.Embedding.BaseURL,
			Model:             s.Embedding.Model,
			RequestsPerSecond: s.Embedding.RequestsPerSecond,
		},
		Answer: answerSection{
			TopK:            s.Answer.TopK,
			MaxContextChars: s.Answer.MaxContextChars,
			SearchMode:      string(s.Answer.SearchMode),
			SummaryMaxPages: s.Answer.SummaryMaxPages,
			DebugSearch:     s.Answer.DebugSearch,
		},
		Log:     logSection{Level: s.Log.Level, Pretty: &pretty},
		Metrics: metricsSection{Addr: s.Metrics.Addr},
	}
}

// parseDuration accepts Go durations ("72h") and bare seconds ("30").
// Invalid values are logged and left to Normalise.
func parseDuration(key, v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("invalid duration for %s: %q", key, v)
		return 0
	}
	return d
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.String()
}
