package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Retrieve:    &MockRetrieveService{},
		Collections: &MockCollectionService{},
		Actions:     &MockResultActionService{},
	}
}

func testRepositories() []domain.Repository {
	return []domain.Repository{
		{
			Collection: "acme_docs-site",
			URL:        "https://github.com/acme/docs-site",
			Owner:      "acme",
			Name:       "docs-site",
		},
		{
			Collection: "beta_runtime",
			URL:        "https://github.com/beta/runtime",
			Owner:      "beta",
			Name:       "runtime",
		},
	}
}

func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{
			Content:     "The scheduler picks the next runnable goroutine from the local run queue.",
			Repo:        "acme_docs-site",
			Path:        "docs/scheduler.md",
			LineStart:   10,
			LineEnd:     42,
			Distance:    0.18,
			HasDistance: true,
		},
		{
			Content:     "Preemption happens at function call boundaries.",
			Repo:        "acme_docs-site",
			Path:        "docs/preemption.md",
			LineStart:   1,
			LineEnd:     20,
			Distance:    0.31,
			HasDistance: true,
		},
	}
}

// readyApp builds an app with dimensions set and repositories loaded.
func readyApp(ports *Ports) *App {
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(reposLoaded{repos: testRepositories()})
	return app
}

func TestNewApp_Success(t *testing.T) {
	ports := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.True(t, app.InputFocused())
	assert.False(t, app.Ready())
}

func TestNewApp_NilPorts(t *testing.T) {
	app, err := NewApp(nil)

	assert.ErrorIs(t, err, ErrInvalidPorts)
	assert.Nil(t, app)
}

func TestNewApp_InvalidPorts(t *testing.T) {
	ports := &Ports{
		Retrieve:    nil,
		Collections: &MockCollectionService{},
	}

	app, err := NewApp(ports)

	assert.ErrorIs(t, err, ErrMissingRetrieveService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
}

func TestApp_Init(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	cmd := app.Init()

	// Init returns a batch command
	assert.NotNil(t, cmd)
}

func TestApp_Update_WindowSize(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	msg := tea.WindowSizeMsg{Width: 80, Height: 24}
	model, cmd := app.Update(msg)

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_Update_ReposLoaded(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	app.Update(reposLoaded{repos: testRepositories()})

	assert.Len(t, app.Repositories(), 2)
	assert.Equal(t, 0, app.RepositoryIndex())
	assert.Equal(t, "2 repositories indexed", app.Status())
}

func TestApp_Update_ReposLoaded_Empty(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	app.Update(reposLoaded{repos: nil})

	assert.Empty(t, app.Repositories())
	assert.Contains(t, app.Status(), "No repositories indexed")
}

func TestApp_Update_ReposLoaded_Error(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	app.Update(reposLoaded{err: errors.New("ledger unavailable")})

	assert.Error(t, app.Err())
	assert.Equal(t, "Failed to load repositories", app.Status())
}

func TestApp_Update_KeyEnter_SubmitsQuery(t *testing.T) {
	queryCalled := false
	mock := &MockRetrieveService{
		QueryFunc: func(
			ctx context.Context, repo domain.RepositoryID, query string, opts domain.RetrievalOptions,
		) ([]domain.RetrievalResult, error) {
			queryCalled = true
			assert.Equal(t, "scheduler", query)
			assert.Equal(t, "acme", repo.Owner)
			assert.Equal(t, "docs-site", repo.Name)
			return testResults(), nil
		},
	}
	ports := newTestPorts()
	ports.Retrieve = mock
	app := readyApp(ports)

	// Type the query into the input
	for _, r := range "scheduler" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.False(t, app.InputFocused())
	assert.Equal(t, "Searching...", app.Status())

	result := cmd()
	assert.IsType(t, queryCompleted{}, result)
	assert.True(t, queryCalled)
}

func TestApp_Update_KeyEnter_EmptyQuery(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, app.InputFocused())
}

func TestApp_Update_KeyEnter_NoRepositories(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(reposLoaded{repos: nil})
	app.SetQuery("scheduler")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Contains(t, app.Status(), "No repositories indexed")
}

func TestApp_Update_KeyEnter_ResultsMode_StartsNewQuery(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})
	require.False(t, app.InputFocused())

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, app.InputFocused())
	assert.Empty(t, app.Query())
}

func TestApp_Update_QueryCompleted_Results(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	app.Update(queryCompleted{results: testResults()})

	assert.Len(t, app.Results(), 2)
	assert.Equal(t, 0, app.SelectedIndex())
	assert.False(t, app.InputFocused())
	assert.Equal(t, "2 results", app.Status())
}

func TestApp_Update_QueryCompleted_Error(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	app.Update(queryCompleted{err: errors.New("embed failed")})

	assert.Error(t, app.Err())
	assert.Equal(t, "Query failed", app.Status())
	assert.True(t, app.InputFocused())
}

func TestApp_Update_QueryCompleted_NoResults(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	app.Update(queryCompleted{results: nil})

	assert.Empty(t, app.Results())
	assert.Equal(t, "No results found.", app.Status())
	assert.True(t, app.InputFocused())
}

func TestApp_Update_Navigation(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, app.SelectedIndex())

	// Bounded at the last result
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, app.SelectedIndex())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, app.SelectedIndex())

	// Bounded at the first result
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, app.SelectedIndex())

	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, app.SelectedIndex())

	app.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, app.SelectedIndex())
}

func TestApp_Update_Tab_SwitchesRepository(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, 1, app.RepositoryIndex())
	assert.Empty(t, app.Results())
	assert.Contains(t, app.Status(), "beta/runtime")

	// Wraps back to the first repository
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, app.RepositoryIndex())
}

func TestApp_Update_Tab_SingleRepository(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(reposLoaded{repos: testRepositories()[:1]})

	app.Update(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, 0, app.RepositoryIndex())
}

func TestApp_CopySelected(t *testing.T) {
	copyCalled := false
	mockAction := &MockResultActionService{
		CopyToClipboardFunc: func(ctx context.Context, result *domain.RetrievalResult) error {
			copyCalled = true
			assert.Equal(t, "docs/scheduler.md", result.Path)
			return nil
		},
	}
	ports := newTestPorts()
	ports.Actions = mockAction
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.True(t, copyCalled)
	assert.Equal(t, "Copied to clipboard", app.Status())
}

func TestApp_CopySelected_Error(t *testing.T) {
	mockAction := &MockResultActionService{
		CopyToClipboardFunc: func(ctx context.Context, result *domain.RetrievalResult) error {
			return errors.New("clipboard unavailable")
		},
	}
	ports := newTestPorts()
	ports.Actions = mockAction
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.Equal(t, "Copy: clipboard unavailable", app.Status())
}

func TestApp_CopySelected_NoActionService(t *testing.T) {
	ports := newTestPorts()
	ports.Actions = nil
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.Equal(t, "Copy not available", app.Status())
}

func TestApp_OpenSelected(t *testing.T) {
	openCalled := false
	mockAction := &MockResultActionService{
		OpenSourceFunc: func(ctx context.Context, result *domain.RetrievalResult) error {
			openCalled = true
			return nil
		},
	}
	ports := newTestPorts()
	ports.Actions = mockAction
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})

	assert.True(t, openCalled)
	assert.Equal(t, "Opening source...", app.Status())
}

func TestApp_Update_KeyQ_Quits(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})
	require.False(t, app.InputFocused())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_KeyQ_TypesIntoInput(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	require.True(t, app.InputFocused())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	assert.Equal(t, "q", app.Query())
}

func TestApp_Update_CtrlC(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_Update_Esc_RefocusesInput(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.SetQuery("scheduler")
	app.Update(queryCompleted{results: testResults()})
	require.False(t, app.InputFocused())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, app.InputFocused())
	assert.Equal(t, "scheduler", app.Query())
}

func TestApp_Update_ContextPropagation(t *testing.T) {
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("test"), "value")

	queryCalled := false
	mock := &MockRetrieveService{
		QueryFunc: func(
			receivedCtx context.Context, repo domain.RepositoryID, query string, opts domain.RetrievalOptions,
		) ([]domain.RetrievalResult, error) {
			queryCalled = true
			assert.Equal(t, "value", receivedCtx.Value(contextKey("test")))
			return testResults(), nil
		},
	}
	ports := newTestPorts()
	ports.Retrieve = mock
	app := readyApp(ports)
	app.WithContext(ctx)
	app.SetQuery("scheduler")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.True(t, queryCalled)
}

func TestApp_View_NotReady(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)

	view := app.View()

	assert.Equal(t, "Initialising...", view)
}

func TestApp_View_RendersHeader(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	view := app.View()

	assert.Contains(t, view, "docdex")
	assert.Contains(t, view, "Query:")
}

func TestApp_View_RendersRepository(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	view := app.View()

	assert.Contains(t, view, "acme/docs-site")
	assert.Contains(t, view, "(1/2)")
}

func TestApp_View_NoRepositories(t *testing.T) {
	ports := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(80, 24)
	app.Update(reposLoaded{repos: nil})

	view := app.View()

	assert.Contains(t, view, "No repositories indexed")
}

func TestApp_View_RendersResults(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.Update(queryCompleted{results: testResults()})

	view := app.View()

	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "docs/scheduler.md:10-42")
	assert.Contains(t, view, "0.1800")
	assert.Contains(t, view, "scheduler picks the next runnable goroutine")
}

func TestApp_View_RendersError(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.Update(queryCompleted{err: errors.New("embed failed")})

	view := app.View()

	assert.Contains(t, view, "Error: embed failed")
}

func TestApp_View_SearchingState(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)
	app.SetQuery("scheduler")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	view := app.View()

	assert.Contains(t, view, "Searching...")
}

func TestRepoLabel(t *testing.T) {
	tests := []struct {
		name string
		repo domain.Repository
		want string
	}{
		{
			name: "owner and name",
			repo: domain.Repository{Owner: "acme", Name: "docs-site", Collection: "acme_docs-site"},
			want: "acme/docs-site",
		},
		{
			name: "name only",
			repo: domain.Repository{Name: "./docs", Collection: "docs"},
			want: "./docs",
		},
		{
			name: "collection fallback",
			repo: domain.Repository{Collection: "notes"},
			want: "notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repoLabel(tt.repo))
		})
	}
}

func TestResultLocation(t *testing.T) {
	withLines := domain.RetrievalResult{Path: "docs/a.md", LineStart: 3, LineEnd: 9}
	assert.Equal(t, "docs/a.md:3-9", resultLocation(&withLines))

	noLines := domain.RetrievalResult{Path: "docs/a.md"}
	assert.Equal(t, "docs/a.md", resultLocation(&noLines))

	repoOnly := domain.RetrievalResult{Repo: "acme_docs-site"}
	assert.Equal(t, "acme_docs-site", resultLocation(&repoOnly))
}

func TestApp_SelectedResult(t *testing.T) {
	ports := newTestPorts()
	app := readyApp(ports)

	assert.Nil(t, app.SelectedResult())

	app.Update(queryCompleted{results: testResults()})
	result := app.SelectedResult()

	require.NotNil(t, result)
	assert.Equal(t, "docs/scheduler.md", result.Path)
	assert.True(t, strings.HasPrefix(result.Content, "The scheduler"))
}
