package driven

import "github.com/custodia-labs/docdex/internal/core/domain"

// ConfigStore persists application settings.
// Implementations handle storage (e.g., TOML files) and environment
// variable overlays.
type ConfigStore interface {
	// Load reads settings from storage. A missing config file yields the
	// defaults, not an error.
	Load() (domain.AppSettings, error)

	// Save persists the settings to storage, creating the file and its
	// parent directories as needed.
	Save(settings domain.AppSettings) error

	// Path returns the configuration file path.
	Path() string
}
