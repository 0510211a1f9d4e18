package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

func TestExtractRepository(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		suffix   string
		expected string
	}{
		{
			name:     "valid status URI",
			uri:      "docdex://repositories/acme_docs-site/status",
			suffix:   "/status",
			expected: "acme_docs-site",
		},
		{
			name:     "valid documents URI",
			uri:      "docdex://repositories/acme_docs-site/documents",
			suffix:   "/documents",
			expected: "acme_docs-site",
		},
		{
			name:     "invalid prefix",
			uri:      "file://repositories/acme_docs-site/status",
			suffix:   "/status",
			expected: "",
		},
		{
			name:     "missing suffix",
			uri:      "docdex://repositories/acme_docs-site",
			suffix:   "/status",
			expected: "",
		},
		{
			name:     "empty repository segment",
			uri:      "docdex://repositories//status",
			suffix:   "/status",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			suffix:   "/status",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractRepository(tt.uri, tt.suffix)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleRepositoriesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns repositories as JSON", func(t *testing.T) {
		mockCollections := &mockCollectionService{
			repos: []domain.Repository{
				{
					Collection:    "acme_docs-site",
					Owner:         "acme",
					Name:          "docs-site",
					DocumentCount: 3,
					ChunkCount:    40,
				},
			},
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories")
		result, err := server.handleRepositoriesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "docdex://repositories", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "acme/docs-site")
		assert.Contains(t, result.Contents[0].Text, "acme_docs-site")
	})

	t.Run("empty index returns empty list", func(t *testing.T) {
		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories")
		result, err := server.handleRepositoriesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockCollections := &mockCollectionService{
			err: errors.New("ledger closed"),
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories")
		_, err = server.handleRepositoriesResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger closed")
	})
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status with live chunk count", func(t *testing.T) {
		mockCollections := &mockCollectionService{
			record: &domain.Repository{
				Collection: "acme_docs-site",
				Owner:      "acme",
				Name:       "docs-site",
				ChunkCount: 40,
			},
			liveChunks: 40,
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories/acme_docs-site/status")
		result, err := server.handleStatusResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "acme/docs-site")
		assert.Contains(t, result.Contents[0].Text, `"live_chunks": 40`)
	})

	t.Run("malformed URI returns not found", func(t *testing.T) {
		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories/status")
		result, err := server.handleStatusResource(ctx, req)

		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("returns error on status failure", func(t *testing.T) {
		mockCollections := &mockCollectionService{
			err: errors.New("repository not found"),
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories/acme_docs-site/status")
		_, err = server.handleStatusResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "repository not found")
	})
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		mockCollections := &mockCollectionService{
			docs: []domain.Document{
				{Path: "docs/install.md", Title: "Installation", ChunkCount: 5, UpdatedAt: updated},
				{Path: "README.md", ChunkCount: 3},
			},
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories/acme_docs-site/documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "docs/install.md")
		assert.Contains(t, result.Contents[0].Text, "Installation")
		assert.Contains(t, result.Contents[0].Text, "2025-06-01T12:00:00Z")
		assert.Contains(t, result.Contents[0].Text, "README.md")
	})

	t.Run("malformed URI returns not found", func(t *testing.T) {
		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("returns error on documents failure", func(t *testing.T) {
		mockCollections := &mockCollectionService{
			err: errors.New("repository not found"),
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("docdex://repositories/acme_docs-site/documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "repository not found")
	})
}
