// Package env overlays DOCDEX_* environment variables onto loaded
// application settings. Environment values always win over file values,
// which keeps containers and CI configurable without a config file.
package env

import (
	"os"

	"github.com/caarlos0/env/v10"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// overrides mirrors the environment variables recognised by docdex.
// Pointer fields distinguish "unset" from an explicit false.
type overrides struct {
	DataDir string `env:"DOCDEX_DATA_DIR"`
	Verbose *bool  `env:"DOCDEX_VERBOSE"`

	EmbeddingProvider string `env:"DOCDEX_EMBEDDING_PROVIDER"`
	EmbeddingModel    string `env:"DOCDEX_EMBEDDING_MODEL"`
	EmbeddingBaseURL  string `env:"DOCDEX_EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   string `env:"DOCDEX_EMBEDDING_API_KEY"`

	LLMProvider  string `env:"DOCDEX_LLM_PROVIDER"`
	LLMModel     string `env:"DOCDEX_LLM_MODEL"`
	LLMBaseURL   string `env:"DOCDEX_LLM_BASE_URL"`
	LLMAPIKey    string `env:"DOCDEX_LLM_API_KEY"`
	LLMMaxTokens int    `env:"DOCDEX_LLM_MAX_TOKENS"`

	ChunkSize    int `env:"DOCDEX_CHUNK_SIZE"`
	ChunkOverlap int `env:"DOCDEX_CHUNK_OVERLAP"`

	TopK       int   `env:"DOCDEX_TOP_K"`
	MaxQueries int   `env:"DOCDEX_MAX_QUERIES"`
	Expand     *bool `env:"DOCDEX_EXPAND"`

	GitHubToken string `env:"DOCDEX_GITHUB_TOKEN"`
}

// Apply parses the environment and overlays any set values onto
// settings. Unset variables leave the corresponding field untouched.
func Apply(settings *domain.AppSettings) error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return err
	}

	if o.DataDir != "" {
		settings.DataDir = o.DataDir
	}
	if o.Verbose != nil {
		settings.Verbose = *o.Verbose
	}

	if o.EmbeddingProvider != "" {
		settings.Embedding.Provider = domain.AIProvider(o.EmbeddingProvider)
	}
	if o.EmbeddingModel != "" {
		settings.Embedding.Model = o.EmbeddingModel
	}
	if o.EmbeddingBaseURL != "" {
		settings.Embedding.BaseURL = o.EmbeddingBaseURL
	}
	if o.EmbeddingAPIKey != "" {
		settings.Embedding.APIKey = o.EmbeddingAPIKey
	}

	if o.LLMProvider != "" {
		settings.LLM.Provider = domain.AIProvider(o.LLMProvider)
	}
	if o.LLMModel != "" {
		settings.LLM.Model = o.LLMModel
	}
	if o.LLMBaseURL != "" {
		settings.LLM.BaseURL = o.LLMBaseURL
	}
	if o.LLMAPIKey != "" {
		settings.LLM.APIKey = o.LLMAPIKey
	}
	if o.LLMMaxTokens > 0 {
		settings.LLM.MaxTokens = o.LLMMaxTokens
	}

	if o.ChunkSize > 0 {
		settings.Chunking.ChunkSize = o.ChunkSize
	}
	if o.ChunkOverlap > 0 {
		settings.Chunking.ChunkOverlap = o.ChunkOverlap
	}

	if o.TopK > 0 {
		settings.Retrieval.TopK = o.TopK
	}
	if o.MaxQueries > 0 {
		settings.Retrieval.MaxQueries = o.MaxQueries
	}
	if o.Expand != nil {
		settings.Retrieval.Expand = *o.Expand
	}

	if o.GitHubToken != "" {
		settings.GitHub.Token = o.GitHubToken
	}
	// Conventional fallback used by most GitHub tooling
	if settings.GitHub.Token == "" {
		settings.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}

	return nil
}
