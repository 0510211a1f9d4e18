package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns retrieval results", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{
			results: []domain.RetrievalResult{
				{
					Content:     "Install with go get.",
					Repo:        "acme_docs-site",
					Path:        "docs/install.md",
					LineStart:   4,
					LineEnd:     12,
					Distance:    0.12,
					HasDistance: true,
					Metadata: map[string]string{
						"uri": "https://github.com/acme/docs-site/blob/main/docs/install.md#L4-L12",
					},
				},
			},
		}

		ports := &Ports{Retrieve: mockRetrieve, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := QueryInput{Repository: "acme/docs-site", Query: "how do I install this"}
		_, output, err := server.handleQuery(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "Install with go get.", output.Results[0].Content)
		assert.Equal(t, "docs/install.md", output.Results[0].Path)
		assert.Equal(t, 4, output.Results[0].LineStart)
		assert.Equal(t, 12, output.Results[0].LineEnd)
		require.NotNil(t, output.Results[0].Distance)
		assert.Equal(t, 0.12, *output.Results[0].Distance)
		assert.Contains(t, output.Results[0].URI, "docs/install.md#L4-L12")
	})

	t.Run("zero distance survives mapping", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{
			results: []domain.RetrievalResult{
				{Content: "Exact match.", Path: "README.md", Distance: 0, HasDistance: true},
			},
		}

		ports := &Ports{Retrieve: mockRetrieve, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := QueryInput{Repository: "acme/docs-site", Query: "readme"}
		_, output, err := server.handleQuery(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Results, 1)
		require.NotNil(t, output.Results[0].Distance)
		assert.Equal(t, 0.0, *output.Results[0].Distance)
	})

	t.Run("missing distance leaves field unset", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{
			results: []domain.RetrievalResult{
				{Content: "No score.", Path: "README.md"},
			},
		}

		ports := &Ports{Retrieve: mockRetrieve, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := QueryInput{Repository: "acme/docs-site", Query: "readme"}
		_, output, err := server.handleQuery(ctx, nil, input)

		require.NoError(t, err)
		require.Len(t, output.Results, 1)
		assert.Nil(t, output.Results[0].Distance)
	})

	t.Run("passes top_k through", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{}
		ports := &Ports{Retrieve: mockRetrieve, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := QueryInput{Repository: "acme/docs-site", Query: "anything", TopK: 3}
		_, output, err := server.handleQuery(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Equal(t, 3, mockRetrieve.lastOpts.TopK)
	})

	t.Run("invalid repository returns error", func(t *testing.T) {
		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := QueryInput{Repository: "   ", Query: "anything"}
		_, _, err = server.handleQuery(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid repository")
	})

	t.Run("returns error on query failure", func(t *testing.T) {
		mockRetrieve := &mockRetrieveService{
			err: errors.New("embedding provider unreachable"),
		}

		ports := &Ports{Retrieve: mockRetrieve, Collections: &mockCollectionService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := QueryInput{Repository: "acme/docs-site", Query: "anything"}
		_, _, err = server.handleQuery(ctx, nil, input)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding provider unreachable")
	})
}

func TestServer_handleListRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("returns repositories", func(t *testing.T) {
		ingested := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		mockCollections := &mockCollectionService{
			repos: []domain.Repository{
				{
					Collection:    "acme_docs-site",
					URL:           "https://github.com/acme/docs-site",
					Owner:         "acme",
					Name:          "docs-site",
					DocumentCount: 12,
					ChunkCount:    87,
					LastIngestAt:  ingested,
				},
				{Collection: "notes", DocumentCount: 2, ChunkCount: 9},
			},
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleListRepositories(ctx, nil, ListRepositoriesInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		require.Len(t, output.Repositories, 2)
		assert.Equal(t, "acme/docs-site", output.Repositories[0].Repository)
		assert.Equal(t, "acme_docs-site", output.Repositories[0].Collection)
		assert.Equal(t, "https://github.com/acme/docs-site", output.Repositories[0].URL)
		assert.Equal(t, 12, output.Repositories[0].Documents)
		assert.Equal(t, 87, output.Repositories[0].Chunks)
		assert.Equal(t, "2025-06-01T12:00:00Z", output.Repositories[0].LastIngest)
		assert.Equal(t, "notes", output.Repositories[1].Repository)
		assert.Empty(t, output.Repositories[1].LastIngest)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockCollections := &mockCollectionService{
			err: errors.New("ledger closed"),
		}

		ports := &Ports{Retrieve: &mockRetrieveService{}, Collections: mockCollections}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleListRepositories(ctx, nil, ListRepositoriesInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger closed")
	})
}
