package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// analyzeTree is a small repository layout exercising every survey rule.
func analyzeTree() []domain.TreeEntry {
	return []domain.TreeEntry{
		{Path: "README.md"},
		{Path: "CONTRIBUTING.md"},
		{Path: "go.mod"},
		{Path: "package.json"},
		{Path: "docs", IsDir: true},
		{Path: "docs/guide.md"},
		{Path: "docs/api.md"},
		{Path: "docs/readme.md"},
		{Path: "src", IsDir: true},
		{Path: "src/main.go"},
		{Path: "src/util.go"},
		{Path: "lib", IsDir: true},
		{Path: "lib/helper.py"},
		{Path: "notes.txt"},
	}
}

func TestNewAnalyzeService(t *testing.T) {
	conn := &mockConnector{connType: "mock"}
	service := NewAnalyzeService(connectorFactoryFor(conn), false)

	require.NotNil(t, service)
	assert.NotNil(t, service.connectorFor)
}

func TestAnalyzeService_Survey(t *testing.T) {
	conn := &mockConnector{connType: "mock", tree: analyzeTree()}
	service := NewAnalyzeService(connectorFactoryFor(conn), false)

	survey, err := service.Survey(context.Background(), ingestRepo(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, survey.DocDirs)
	assert.Equal(t, []string{"README.md", "docs/readme.md"}, survey.ReadmePaths)
	assert.Equal(t, []string{"go", "npm"}, survey.Frameworks)
	assert.Equal(t, 5, survey.MarkdownCount)
	assert.Equal(t, 3, survey.CodeFileCount)
	assert.True(t, conn.closed)
}

func TestAnalyzeService_Survey_IgnoresNestedMarkers(t *testing.T) {
	conn := &mockConnector{connType: "mock", tree: []domain.TreeEntry{
		{Path: "vendor", IsDir: true},
		{Path: "vendor/package.json"},
		{Path: "Cargo.toml"},
	}}
	service := NewAnalyzeService(connectorFactoryFor(conn), false)

	survey, err := service.Survey(context.Background(), ingestRepo(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, survey.Frameworks, "marker files count only at the root")
}

func TestAnalyzeService_Survey_ListError(t *testing.T) {
	conn := &mockConnector{connType: "mock", listErr: errors.New("tree unavailable")}
	service := NewAnalyzeService(connectorFactoryFor(conn), false)

	_, err := service.Survey(context.Background(), ingestRepo(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list tree")
}

func TestAnalyzeService_Survey_FactoryError(t *testing.T) {
	factory := func(domain.RepositoryID) (driven.Connector, error) {
		return nil, errors.New("no connector for scheme")
	}
	service := NewAnalyzeService(factory, false)

	_, err := service.Survey(context.Background(), ingestRepo(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create connector")
}

func TestAnalyzeService_Plan(t *testing.T) {
	conn := &mockConnector{connType: "mock", tree: analyzeTree()}
	service := NewAnalyzeService(connectorFactoryFor(conn), false)

	plan, err := service.Plan(context.Background(), ingestRepo(t))

	require.NoError(t, err)
	require.Len(t, plan.Entries, 4)

	assert.Equal(t, "README.md", plan.Entries[0].Path)
	assert.Equal(t, 1, plan.Entries[0].Priority)
	assert.Equal(t, "README file", plan.Entries[0].Reason)

	assert.Equal(t, "docs/readme.md", plan.Entries[1].Path)
	assert.Equal(t, 1, plan.Entries[1].Priority)

	assert.Equal(t, "docs", plan.Entries[2].Path)
	assert.Equal(t, 2, plan.Entries[2].Priority)
	assert.Equal(t, "Documentation directory with 3 files", plan.Entries[2].Reason)

	assert.Equal(t, "CONTRIBUTING.md", plan.Entries[3].Path)
	assert.Equal(t, 3, plan.Entries[3].Priority)
	assert.Equal(t, "Markdown file", plan.Entries[3].Reason)
}

func TestAnalyzeService_Plan_IncludeCode(t *testing.T) {
	conn := &mockConnector{connType: "mock", tree: analyzeTree()}
	service := NewAnalyzeService(connectorFactoryFor(conn), true)

	plan, err := service.Plan(context.Background(), ingestRepo(t))

	require.NoError(t, err)
	require.Len(t, plan.Entries, 6)

	assert.Equal(t, "lib", plan.Entries[4].Path)
	assert.Equal(t, 4, plan.Entries[4].Priority)
	assert.Equal(t, "Code directory with 1 source files", plan.Entries[4].Reason)

	assert.Equal(t, "src", plan.Entries[5].Path)
	assert.Equal(t, "Code directory with 2 source files", plan.Entries[5].Reason)
}

func TestAnalyzeService_Plan_EmptyTree(t *testing.T) {
	conn := &mockConnector{connType: "mock"}
	service := NewAnalyzeService(connectorFactoryFor(conn), true)

	plan, err := service.Plan(context.Background(), ingestRepo(t))

	require.NoError(t, err)
	assert.Empty(t, plan.Entries)
	assert.Equal(t, "acme/handbook", plan.Repo.String())
}

func TestCodeDirectories_CapsAtFive(t *testing.T) {
	tree := []domain.TreeEntry{
		{Path: "src/a.go"}, {Path: "src/b.go"}, {Path: "src/c.go"},
		{Path: "lib/a.py"}, {Path: "lib/b.py"},
		{Path: "app/a.js"},
		{Path: "server/a.ts"},
		{Path: "backend/a.rs"},
		{Path: "frontend/a.tsx"},
	}

	dirs := codeDirectories(tree)

	require.Len(t, dirs, 5)
	assert.Equal(t, "src", dirs[0].path, "largest directory wins the first slot")
	assert.Equal(t, 3, dirs[0].files)
	assert.Equal(t, "lib", dirs[1].path)
}
