package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docdex/internal/adapters/driven/ai"
	"github.com/custodia-labs/docdex/internal/adapters/driven/config/env"
	"github.com/custodia-labs/docdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docdex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docdex/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/docdex/internal/connectors"
	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/services"
	"github.com/custodia-labs/docdex/internal/logger"
	"github.com/custodia-labs/docdex/internal/postprocessors"
)

// Wiring state. Each stage is idempotent; tests mark stages wired and
// inject mocks instead.
var (
	wiredConfig bool
	wiredStores bool
	wiredData   bool

	appSettings *domain.AppSettings
	configStore driven.ConfigStore
	ledgerStore driven.DocumentStore
	vectorStore driven.VectorStore
)

// ensureConfig loads .env, the config file, and the environment overlay.
// Cheap and offline; safe for every command.
func ensureConfig(_ *cobra.Command, _ []string) error {
	if wiredConfig {
		return nil
	}

	// Optional developer convenience; a missing .env is not an error.
	_ = godotenv.Load() //nolint:errcheck

	store, err := file.NewConfigStore(dataDir)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Environment wins over the file.
	if err := env.Apply(&settings); err != nil {
		return fmt.Errorf("apply environment overrides: %w", err)
	}

	logger.SetVerbose(verbose || settings.Verbose)

	configStore = store
	appSettings = &settings
	if settingsService == nil {
		settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	}

	wiredConfig = true
	return nil
}

// ensureStores opens the document ledger and the vector index and wires
// the services that need no AI provider.
func ensureStores(cmd *cobra.Command, args []string) error {
	if wiredStores {
		return nil
	}
	if err := ensureConfig(cmd, args); err != nil {
		return err
	}

	ledger, err := sqlite.NewStore(storagePath("data"))
	if err != nil {
		return fmt.Errorf("open document ledger: %w", err)
	}
	vectors, err := chromem.NewStore(chromem.Config{
		Path:     storagePath("vectors"),
		Compress: chromem.DefaultCompress,
	})
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}

	ledgerStore = ledger
	vectorStore = vectors
	if collectionService == nil {
		collectionService = services.NewCollectionService(ledger, vectors)
	}
	if actionService == nil {
		actionService = services.NewResultActionService(ledger)
	}
	if analyzeService == nil {
		analyzeService = services.NewAnalyzeService(connectorFor, includeCode)
	}

	wiredStores = true
	return nil
}

// ensureDataPlane wires everything that talks to an AI provider. The
// embedding provider is pinged here; an unreachable one fails the
// command before any work starts.
func ensureDataPlane(cmd *cobra.Command, args []string) error {
	if wiredData {
		return nil
	}
	if err := ensureStores(cmd, args); err != nil {
		return err
	}

	result, err := ai.InitServices(appSettings)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		logger.Warn("%s", warning)
	}
	if result.EmbeddingService == nil {
		return fmt.Errorf("%w: no embedding provider, run 'docdex config set embedding.provider'",
			domain.ErrNotConfigured)
	}

	pipeline, err := buildPipeline(appSettings)
	if err != nil {
		return err
	}

	planner := services.NewQueryPlanner(result.LLMService)
	if prompts, promptErr := file.NewPromptStore(storagePath("prompts")); promptErr == nil {
		planner.SetPromptStore(prompts)
	} else {
		logger.Warn("Prompt overrides unavailable: %v", promptErr)
	}

	if ingestService == nil {
		ingestService = services.NewIngestService(
			connectorFor, ledgerStore, vectorStore, result.EmbeddingService, pipeline)
	}
	if retrieveService == nil {
		retrieveService = services.NewRetrieveService(
			vectorStore, result.EmbeddingService, planner, appSettings.Retrieval)
	}

	wiredData = true
	return nil
}

// connectorFor builds the connector for a repository: the GitHub API
// for github.com identifiers, the local filesystem for everything else.
func connectorFor(repo domain.RepositoryID) (driven.Connector, error) {
	opts := connectors.Options{IncludeCode: includeCode, Branch: branch}
	if appSettings != nil {
		opts.GitHubToken = appSettings.GitHub.Token
	}
	return connectors.For(repo, repo.URL, opts), nil
}

// buildPipeline assembles the post-processing pipeline from config.
// An empty config yields the default chunker tuned by the chunking
// settings.
func buildPipeline(settings *domain.AppSettings) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	configs := settings.Pipeline.Processors
	if len(configs) == 0 {
		configs = []domain.ProcessorConfig{{
			Name: "chunker",
			Config: map[string]any{
				"chunk_size": settings.Chunking.ChunkSize,
				"overlap":    settings.Chunking.ChunkOverlap,
			},
		}}
	}

	pipeline := postprocessors.NewPipeline()
	for _, pc := range configs {
		processor, err := registry.Build(pc.Name, pc.Config)
		if err != nil {
			return nil, fmt.Errorf("build processor %q: %w", pc.Name, err)
		}
		pipeline.Add(processor)
	}
	return pipeline, nil
}

// storagePath resolves a subdirectory under the data directory.
// Precedence: --data-dir flag, configured data_dir, ~/.docdex.
func storagePath(sub string) string {
	base := dataDir
	if base == "" && appSettings != nil {
		base = appSettings.DataDir
	}
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Stores fall back to their own defaults on empty paths.
			return ""
		}
		base = filepath.Join(home, ".docdex")
	}
	return filepath.Join(base, sub)
}
