package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// QueryInput is the input schema for the docdex_query tool.
type QueryInput struct {
	Repository string `json:"repository" jsonschema:"the repository to query, as a GitHub URL or owner/name"`
	Query      string `json:"query" jsonschema:"the question or topic to retrieve documentation for"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default from config)"`
}

// QueryOutput is the output schema for the docdex_query tool.
type QueryOutput struct {
	Results []QueryResultOutput `json:"results"`
	Count   int                 `json:"count"`
}

// QueryResultOutput represents a single retrieved chunk.
type QueryResultOutput struct {
	Content   string   `json:"content"`
	Path      string   `json:"path"`
	LineStart int      `json:"line_start,omitempty"`
	LineEnd   int      `json:"line_end,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
	URI       string   `json:"uri,omitempty"`
}

// ListRepositoriesInput is the input schema for docdex_list_repositories.
type ListRepositoriesInput struct{}

// ListRepositoriesOutput is the output schema for docdex_list_repositories.
type ListRepositoriesOutput struct {
	Repositories []RepositoryOutput `json:"repositories"`
	Count        int                `json:"count"`
}

// RepositoryOutput represents one indexed repository.
type RepositoryOutput struct {
	Repository string `json:"repository"`
	Collection string `json:"collection"`
	URL        string `json:"url,omitempty"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docdex_query",
		Description: "Retrieve documentation chunks relevant to a query from an indexed repository",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "docdex_list_repositories",
		Description: "List the indexed repositories available for querying",
	}, s.handleListRepositories)
}

// handleQuery handles the docdex_query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	repo, err := domain.ParseRepositoryID(input.Repository)
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("invalid repository %q: %w", input.Repository, err)
	}

	opts := domain.RetrievalOptions{TopK: input.TopK}
	results, err := s.ports.Retrieve.Query(ctx, repo, input.Query, opts)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Results: make([]QueryResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = toResultOutput(&results[i])
	}

	return nil, output, nil
}

// handleListRepositories handles the docdex_list_repositories invocation.
func (s *Server) handleListRepositories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListRepositoriesInput,
) (*mcp.CallToolResult, ListRepositoriesOutput, error) {
	repos, err := s.ports.Collections.List(ctx)
	if err != nil {
		return nil, ListRepositoriesOutput{}, err
	}

	output := ListRepositoriesOutput{
		Repositories: make([]RepositoryOutput, len(repos)),
		Count:        len(repos),
	}
	for i := range repos {
		output.Repositories[i] = toRepositoryOutput(&repos[i])
	}

	return nil, output, nil
}

func toResultOutput(result *domain.RetrievalResult) QueryResultOutput {
	out := QueryResultOutput{
		Content:   result.Content,
		Path:      result.Path,
		LineStart: result.LineStart,
		LineEnd:   result.LineEnd,
		URI:       result.Metadata["uri"],
	}
	if result.HasDistance {
		distance := result.Distance
		out.Distance = &distance
	}
	return out
}

func toRepositoryOutput(record *domain.Repository) RepositoryOutput {
	name := record.Collection
	if record.Owner != "" {
		name = record.Owner + "/" + record.Name
	}
	out := RepositoryOutput{
		Repository: name,
		Collection: record.Collection,
		URL:        record.URL,
		Documents:  record.DocumentCount,
		Chunks:     record.ChunkCount,
	}
	if !record.LastIngestAt.IsZero() {
		out.LastIngest = record.LastIngestAt.UTC().Format(time.RFC3339)
	}
	return out
}
