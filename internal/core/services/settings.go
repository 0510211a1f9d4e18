package services

import (
	"fmt"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
//
// Parameters:
//   - configStore: persisted settings storage
//   - aiValidator: provider connectivity checks, optional (can be nil)
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings, err := s.configStore.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings must not be nil", domain.ErrInvalidInput)
	}
	if err := s.configStore.Save(*settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider. An empty model
// selects the provider's default; an empty apiKey keeps the stored one.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.SupportsEmbedding() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// No model named means the provider's default. Keeping the previous
	// provider's model across a switch would misconfigure the client.
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels[provider]
	}

	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultOllamaBaseURL
		}
	} else {
		// Cloud providers use their well-known endpoint.
		settings.Embedding.BaseURL = ""
	}

	if apiKey != "" {
		settings.Embedding.APIKey = apiKey
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider. An empty model selects the
// provider's default; an empty apiKey keeps the stored one.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.SupportsGeneration() {
		return fmt.Errorf("%w: llm provider %q", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = domain.DefaultOllamaBaseURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	}

	return s.Save(settings)
}

// SetGitHubToken stores the GitHub personal access token. An empty token
// clears it.
func (s *SettingsService) SetGitHubToken(token string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.GitHub.Token = token
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by
// pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging
// the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

