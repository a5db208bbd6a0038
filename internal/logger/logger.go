// Package logger provides leveled logging for docask on top of zerolog.
// Logs go to stderr so command output on stdout stays clean. When verbose
// mode is enabled via the --verbose flag, debug messages are included to
// help users understand the ingestion and retrieval pipeline.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // human-readable console output
	Output io.Writer
}

var (
	mu      sync.RWMutex
	verbose bool
)

var (
	pretty bool          = true
	level  zerolog.Level = zerolog.InfoLevel
	output io.Writer     = os.Stderr
)

var zlog = build()

// build creates the zerolog logger from the current state. Callers hold mu.
func build() zerolog.Logger {
	w := output
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    output != os.Stderr,
		}
	}
	lvl := level
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Configure applies cfg. Unknown levels fall back to info.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(cfg.Level)
	pretty = cfg.Pretty
	if cfg.Output != nil {
		output = cfg.Output
	}
	zlog = build()
}

// ParseLevel converts a level name to a zerolog level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	zlog = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	zlog = build()
}

// SetPretty switches between console and JSON output.
func SetPretty(p bool) {
	mu.Lock()
	defer mu.Unlock()
	pretty = p
	zlog = build()
}

// Get returns the current zerolog logger.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return zlog
}

// Component returns a logger tagged with a component name.
func Component(name string) zerolog.Logger {
	l := Get()
	return l.With().Str("component", name).Logger()
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	l := Get()
	l.Debug().Msgf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	l := Get()
	l.Debug().Str("section", name).Msg("=== " + name + " ===")
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	l := Get()
	l.Info().Msgf(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	l := Get()
	l.Warn().Msgf(format, args...)
}

// Error logs err with a formatted message at error level.
func Error(err error, format string, args ...any) {
	l := Get()
	l.Error().Err(err).Msgf(format, args...)
}
