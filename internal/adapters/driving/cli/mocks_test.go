package cli

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	stats    *domain.IngestStats
	doc      *domain.Document
	err      error
	lastRepo domain.RepositoryID
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	repo domain.RepositoryID,
) (*domain.IngestStats, error) {
	m.lastRepo = repo
	return m.stats, m.err
}

func (m *mockIngestService) IngestFile(
	_ context.Context,
	repo domain.RepositoryID,
	_ domain.RepoFile,
) (*domain.Document, error) {
	m.lastRepo = repo
	return m.doc, m.err
}

func (m *mockIngestService) Watch(_ context.Context, repo domain.RepositoryID) error {
	m.lastRepo = repo
	return m.err
}

// mockRetrieveService is a mock implementation of driving.RetrieveService.
type mockRetrieveService struct {
	results     []domain.RetrievalResult
	err         error
	lastQuery   string
	lastOpts    domain.RetrievalOptions
	briefCalled bool
}

func (m *mockRetrieveService) Query(
	_ context.Context,
	_ domain.RepositoryID,
	query string,
	opts domain.RetrievalOptions,
) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockRetrieveService) QueryBrief(
	_ context.Context,
	_ domain.RepositoryID,
	_ domain.Brief,
	opts domain.RetrievalOptions,
) ([]domain.RetrievalResult, error) {
	m.briefCalled = true
	m.lastOpts = opts
	return m.results, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	repos      []domain.Repository
	record     *domain.Repository
	liveChunks int
	docs       []domain.Document
	err        error
	lastRepo   domain.RepositoryID
	lastPath   string
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Repository, error) {
	return m.repos, m.err
}

func (m *mockCollectionService) Status(
	_ context.Context,
	repo domain.RepositoryID,
) (*domain.Repository, int, error) {
	m.lastRepo = repo
	return m.record, m.liveChunks, m.err
}

func (m *mockCollectionService) Documents(
	_ context.Context,
	repo domain.RepositoryID,
) ([]domain.Document, error) {
	m.lastRepo = repo
	return m.docs, m.err
}

func (m *mockCollectionService) DeleteRepository(_ context.Context, repo domain.RepositoryID) error {
	m.lastRepo = repo
	return m.err
}

func (m *mockCollectionService) DeleteDocument(
	_ context.Context,
	repo domain.RepositoryID,
	path string,
) error {
	m.lastRepo = repo
	m.lastPath = path
	return m.err
}

func (m *mockCollectionService) ClearExclusion(
	_ context.Context,
	repo domain.RepositoryID,
	path string,
) error {
	m.lastRepo = repo
	m.lastPath = path
	return m.err
}

// mockAnalyzeService is a mock implementation of driving.AnalyzeService.
type mockAnalyzeService struct {
	survey *domain.RepoSurvey
	plan   *domain.IngestionPlan
	err    error
}

func (m *mockAnalyzeService) Survey(
	_ context.Context,
	_ domain.RepositoryID,
) (*domain.RepoSurvey, error) {
	return m.survey, m.err
}

func (m *mockAnalyzeService) Plan(
	_ context.Context,
	_ domain.RepositoryID,
) (*domain.IngestionPlan, error) {
	return m.plan, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings          domain.AppSettings
	saved             *domain.AppSettings
	embeddingProvider domain.AIProvider
	llmProvider       domain.AIProvider
	token             string
	err               error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	settings := m.settings
	return &settings, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.err != nil {
		return m.err
	}
	m.settings = *settings
	m.saved = settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(
	provider domain.AIProvider,
	_, _ string,
) error {
	m.embeddingProvider = provider
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, _, _ string) error {
	m.llmProvider = provider
	return m.err
}

func (m *mockSettingsService) SetGitHubToken(token string) error {
	m.token = token
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.err
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.err
}

// mockActionService is a mock implementation of driving.ResultActionService.
type mockActionService struct {
	copied *domain.RetrievalResult
	opened *domain.RetrievalResult
	err    error
}

func (m *mockActionService) CopyToClipboard(
	_ context.Context,
	result *domain.RetrievalResult,
) error {
	m.copied = result
	return m.err
}

func (m *mockActionService) OpenSource(_ context.Context, result *domain.RetrievalResult) error {
	m.opened = result
	return m.err
}

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	started bool
	stopped bool
	err     error
}

func (m *mockScheduler) Start(_ context.Context) error {
	m.started = true
	return m.err
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return m.err
}
