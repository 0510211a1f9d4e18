package ai

import (
	"testing"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "anthropic provider is not configured for embeddings",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
			wantNil: true,
			wantErr: false, // IsConfigured() returns false for anthropic embeddings
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
				svc.Close()
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.LLMSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
			wantErr:  false,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.ProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.1",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.ProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.ProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
			wantNil: false,
			wantErr: false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
				svc.Close()
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestValidateEmbeddingConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.EmbeddingSettings{},
			wantErr:  false,
		},
		{
			name: "anthropic is not configured for embeddings",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingConfig(tt.settings)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateLLMConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantErr  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantErr:  false,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantErr:  false,
		},
		{
			name: "unknown provider returns nil (not configured)",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantErr: false, // unknown provider is not valid, so IsConfigured() returns false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLLMConfig(tt.settings)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateAndValidateEmbeddingService_NotConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
	}{
		{name: "nil settings", settings: nil},
		{name: "unconfigured settings", settings: &domain.EmbeddingSettings{}},
		{
			name: "anthropic embeddings",
			settings: &domain.EmbeddingSettings{
				Provider: domain.ProviderAnthropic,
				APIKey:   "test-key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAndValidateEmbeddingService(tt.settings)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if svc != nil {
				t.Error("expected nil service")
				svc.Close()
			}
		})
	}
}

func TestCreateAndValidateLLMService_NotConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
	}{
		{name: "nil settings", settings: nil},
		{name: "unconfigured settings", settings: &domain.LLMSettings{}},
		{
			name: "unknown provider",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateAndValidateLLMService(tt.settings)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if svc != nil {
				t.Error("expected nil service")
				svc.Close()
			}
		})
	}
}

func TestInitResult_Close_AllServices(t *testing.T) {
	// Create a result with all services populated
	result := &InitResult{}

	// Create a local embedding service (no network needed for construction)
	embSvc := createOllamaEmbedding(&domain.EmbeddingSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
	})
	result.EmbeddingService = embSvc

	// Create a local LLM service
	llmSvc := createOllamaLLM(&domain.LLMSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "llama3.1",
	})
	result.LLMService = llmSvc

	// Close should not panic and should close all services
	result.Close()
}

func TestCreateOllamaEmbedding_KnownModelDimensions(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
	}

	svc := createOllamaEmbedding(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if got := svc.Dimensions(); got != domain.EmbeddingDimensions["nomic-embed-text"] {
		t.Errorf("Dimensions() = %d, want %d", got, domain.EmbeddingDimensions["nomic-embed-text"])
	}
}

func TestCreateOllamaEmbedding_UnknownModel(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "custom-model-unknown",
	}

	svc := createOllamaEmbedding(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateOpenAIEmbedding_Success(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider: domain.ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  "https://api.openai.com/v1",
		Model:    "text-embedding-3-small",
	}

	svc, err := createOpenAIEmbedding(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateAnthropicLLM_Success(t *testing.T) {
	settings := &domain.LLMSettings{
		Provider: domain.ProviderAnthropic,
		APIKey:   "test-key",
		BaseURL:  "https://api.anthropic.com",
		Model:    "claude-3-5-sonnet-latest",
	}

	svc, err := createAnthropicLLM(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateOpenAILLM_Success(t *testing.T) {
	settings := &domain.LLMSettings{
		Provider: domain.ProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  "https://api.openai.com/v1",
		Model:    "gpt-4o-mini",
	}

	svc, err := createOpenAILLM(settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

func TestCreateOllamaLLM_Success(t *testing.T) {
	settings := &domain.LLMSettings{
		Provider: domain.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "llama3.1",
	}

	svc := createOllamaLLM(settings)
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()
}

// contains checks if s contains substr.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
