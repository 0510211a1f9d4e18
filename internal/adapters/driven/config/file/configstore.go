package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore reads and writes application settings as TOML.
// Settings are stored in a single file within the docdex config directory.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.docdex/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docdex")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the TOML file. A missing file yields the
// defaults; a partial file is filled in with defaults for fields it
// does not set.
func (s *ConfigStore) Load() (domain.AppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultAppSettings(), nil
		}
		return domain.AppSettings{}, err
	}

	var settings domain.AppSettings
	if err := toml.Unmarshal(data, &settings); err != nil {
		return domain.AppSettings{}, fmt.Errorf("parse %s: %w", s.filePath, err)
	}

	settings.ApplyDefaults()
	return settings, nil
}

// Save persists the settings to disk, replacing the previous file.
func (s *ConfigStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}

	// Restricted permissions, the file may hold API keys
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
