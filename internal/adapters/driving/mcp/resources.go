package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// uriScheme is the custom URI scheme for docdex resources.
const uriScheme = "docdex://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing repositories.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "repositories",
		Name:        "repositories",
		Description: "List of all indexed repositories",
		MIMEType:    "application/json",
	}, s.handleRepositoriesResource)

	// Template for one repository's status.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "repositories/{repository}/status",
		Name:        "repository-status",
		Description: "Index status of a specific repository",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	// Template for one repository's documents.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "repositories/{repository}/documents",
		Name:        "repository-documents",
		Description: "Documents indexed from a specific repository",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleRepositoriesResource returns a list of all indexed repositories.
func (s *Server) handleRepositoriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	repos, err := s.ports.Collections.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	infos := make([]RepositoryOutput, len(repos))
	for i := range repos {
		infos[i] = toRepositoryOutput(&repos[i])
	}

	return jsonResource(req.Params.URI, infos)
}

// handleStatusResource returns one repository's ledger record and live
// index count.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractRepository(req.Params.URI, "/status")
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	repo, err := domain.ParseRepositoryID(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, liveChunks, err := s.ports.Collections.Status(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("repository status: %w", err)
	}

	status := struct {
		RepositoryOutput
		LiveChunks int `json:"live_chunks"`
	}{RepositoryOutput: toRepositoryOutput(record), LiveChunks: liveChunks}

	return jsonResource(req.Params.URI, status)
}

// handleDocumentsResource returns documents for a specific repository.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractRepository(req.Params.URI, "/documents")
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	repo, err := domain.ParseRepositoryID(name)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Collections.Documents(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		Path    string `json:"path"`
		Title   string `json:"title,omitempty"`
		Chunks  int    `json:"chunks"`
		Updated string `json:"updated,omitempty"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			Path:   docs[i].Path,
			Title:  docs[i].Title,
			Chunks: docs[i].ChunkCount,
		}
		if !docs[i].UpdatedAt.IsZero() {
			infos[i].Updated = docs[i].UpdatedAt.UTC().Format(time.RFC3339)
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// jsonResource wraps a value as a JSON resource result.
func jsonResource(uri string, value any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRepository extracts the repository segment from a URI like
// docdex://repositories/{repository}{suffix}.
func extractRepository(uri, suffix string) string {
	const prefix = uriScheme + "repositories/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)

	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(uri, suffix)
}
