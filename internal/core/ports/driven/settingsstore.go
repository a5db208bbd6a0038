package driven

import "github.com/custodia-labs/docask/internal/core/domain"

// SettingsStore is the explicit load/save boundary for settings.
type SettingsStore interface {
	// Load returns the stored settings. It never fails: missing or corrupt
	// settings fall back to defaults.
	Load() domain.Settings

	// Save validates and persists settings.
	Save(settings domain.Settings) error

	// Path returns where settings are stored.
	Path() string
}
