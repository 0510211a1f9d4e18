package domain

// AIProvider identifies an AI service provider for embeddings or text
// generation.
type AIProvider string

const (
	// ProviderOllama is a local Ollama server.
	ProviderOllama AIProvider = "ollama"

	// ProviderOpenAI is the OpenAI API.
	ProviderOpenAI AIProvider = "openai"

	// ProviderAnthropic is the Anthropic API. Text generation only.
	ProviderAnthropic AIProvider = "anthropic"
)

// String returns the provider name.
func (p AIProvider) String() string {
	return string(p)
}

// SupportsEmbedding reports whether the provider offers an embedding API.
func (p AIProvider) SupportsEmbedding() bool {
	return p == ProviderOllama || p == ProviderOpenAI
}

// SupportsGeneration reports whether the provider offers a text
// generation API.
func (p AIProvider) SupportsGeneration() bool {
	return p == ProviderOllama || p == ProviderOpenAI || p == ProviderAnthropic
}

// RequiresAPIKey reports whether the provider rejects unauthenticated
// requests.
func (p AIProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

// IsLocal reports whether the provider runs on the user's machine and
// needs a base URL instead of an API key.
func (p AIProvider) IsLocal() bool {
	return p == ProviderOllama
}

// Defaults applied when settings are absent from the config file.
const (
	DefaultEmbeddingProvider = ProviderOllama
	DefaultEmbeddingModel    = "nomic-embed-text"
	DefaultOllamaBaseURL     = "http://localhost:11434"

	DefaultLLMProvider  = ProviderOllama
	DefaultLLMModel     = "llama3.1"
	DefaultLLMMaxTokens = 1024

	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	DefaultTopK       = 5
	DefaultMaxQueries = 8
)

// DefaultEmbeddingModels maps each embedding-capable provider to the
// model used when a provider switch names none.
var DefaultEmbeddingModels = map[AIProvider]string{
	ProviderOllama: DefaultEmbeddingModel,
	ProviderOpenAI: "text-embedding-3-small",
}

// DefaultLLMModels maps each generation-capable provider to the model
// used when a provider switch names none.
var DefaultLLMModels = map[AIProvider]string{
	ProviderOllama:    DefaultLLMModel,
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-sonnet-latest",
}

// EmbeddingDimensions maps known embedding models to their vector
// dimensions. Models not listed here report a dimension of zero and the
// index derives the dimension from the first stored vector.
var EmbeddingDimensions = map[string]int{
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider AIProvider `toml:"provider"`
	Model    string     `toml:"model"`
	BaseURL  string     `toml:"base_url"`
	APIKey   string     `toml:"api_key"`
}

// IsConfigured reports whether the settings are complete enough to
// construct a client.
func (e EmbeddingSettings) IsConfigured() bool {
	switch e.Provider {
	case ProviderOllama:
		return e.Model != ""
	case ProviderOpenAI:
		return e.Model != "" && e.APIKey != ""
	}
	return false
}

// Dimensions returns the vector dimension for the configured model,
// zero when unknown.
func (e EmbeddingSettings) Dimensions() int {
	return EmbeddingDimensions[e.Model]
}

// LLMSettings configures the text generation provider used for query
// expansion.
type LLMSettings struct {
	Provider  AIProvider `toml:"provider"`
	Model     string     `toml:"model"`
	BaseURL   string     `toml:"base_url"`
	APIKey    string     `toml:"api_key"`
	MaxTokens int        `toml:"max_tokens"`
}

// IsConfigured reports whether the settings are complete enough to
// construct a client.
func (l LLMSettings) IsConfigured() bool {
	switch l.Provider {
	case ProviderOllama:
		return l.Model != ""
	case ProviderOpenAI, ProviderAnthropic:
		return l.Model != "" && l.APIKey != ""
	}
	return false
}

// ChunkingSettings tunes the document chunker.
type ChunkingSettings struct {
	// ChunkSize is the window size in characters for fixed-window
	// splitting and the re-split threshold for oversized sections.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the number of characters consecutive windows share.
	// Always smaller than ChunkSize.
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrievalSettings tunes retrieval behaviour.
type RetrievalSettings struct {
	// TopK is the default number of results returned after merging.
	TopK int `toml:"top_k"`

	// MaxQueries caps how many queries expansion may plan.
	MaxQueries int `toml:"max_queries"`

	// Expand enables model-based multi-query expansion by default.
	Expand bool `toml:"expand"`
}

// GitHubSettings configures the GitHub connector.
type GitHubSettings struct {
	// Token is a personal access token. Unauthenticated access works
	// for public repositories at a much lower rate limit.
	Token string `toml:"token"`
}

// ProcessorConfig configures a single post-processor by name.
type ProcessorConfig struct {
	Name   string         `toml:"name"`
	Config map[string]any `toml:"config"`
}

// PipelineConfig configures the post-processing pipeline applied to
// fetched files before indexing.
type PipelineConfig struct {
	Processors []ProcessorConfig `toml:"processors"`
}

// AppSettings is the full application configuration.
type AppSettings struct {
	// DataDir is the root directory for all persisted state.
	DataDir string `toml:"data_dir"`

	Verbose bool `toml:"verbose"`

	Embedding EmbeddingSettings `toml:"embedding"`
	LLM       LLMSettings       `toml:"llm"`
	Chunking  ChunkingSettings  `toml:"chunking"`
	Retrieval RetrievalSettings `toml:"retrieval"`
	GitHub    GitHubSettings    `toml:"github"`
	Pipeline  PipelineConfig    `toml:"pipeline"`
}

// DefaultAppSettings returns the settings used before any config file
// exists. DataDir is left empty; the config store resolves it against
// the user's home directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: DefaultEmbeddingProvider,
			Model:    DefaultEmbeddingModel,
			BaseURL:  DefaultOllamaBaseURL,
		},
		LLM: LLMSettings{
			Provider:  DefaultLLMProvider,
			Model:     DefaultLLMModel,
			BaseURL:   DefaultOllamaBaseURL,
			MaxTokens: DefaultLLMMaxTokens,
		},
		Chunking: ChunkingSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:       DefaultTopK,
			MaxQueries: DefaultMaxQueries,
			Expand:     true,
		},
	}
}

// ApplyDefaults fills zero-valued fields after decoding a partial config
// file. Explicitly configured values are never overwritten.
func (s *AppSettings) ApplyDefaults() {
	def := DefaultAppSettings()

	if s.Embedding.Provider == "" {
		s.Embedding.Provider = def.Embedding.Provider
	}
	if s.Embedding.Model == "" {
		s.Embedding.Model = def.Embedding.Model
	}
	if s.Embedding.BaseURL == "" && s.Embedding.Provider == ProviderOllama {
		s.Embedding.BaseURL = def.Embedding.BaseURL
	}

	if s.LLM.Provider == "" {
		s.LLM.Provider = def.LLM.Provider
	}
	if s.LLM.Model == "" {
		s.LLM.Model = def.LLM.Model
	}
	if s.LLM.BaseURL == "" && s.LLM.Provider == ProviderOllama {
		s.LLM.BaseURL = def.LLM.BaseURL
	}
	if s.LLM.MaxTokens <= 0 {
		s.LLM.MaxTokens = def.LLM.MaxTokens
	}

	if s.Chunking.ChunkSize <= 0 {
		s.Chunking.ChunkSize = def.Chunking.ChunkSize
	}
	if s.Chunking.ChunkOverlap <= 0 || s.Chunking.ChunkOverlap >= s.Chunking.ChunkSize {
		// Restore the default size/overlap ratio so overlap stays valid
		// for any configured size.
		s.Chunking.ChunkOverlap = s.Chunking.ChunkSize / 5
	}

	if s.Retrieval.TopK <= 0 {
		s.Retrieval.TopK = def.Retrieval.TopK
	}
	if s.Retrieval.MaxQueries <= 0 {
		s.Retrieval.MaxQueries = def.Retrieval.MaxQueries
	}
}
