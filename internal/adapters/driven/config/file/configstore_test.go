package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".docdex", "config.toml"), store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	// On Unix systems, a path under /dev/null cannot be created
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	nestedPath := filepath.Join(tmpDir, "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	require.NotNil(t, store)

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestConfigStore_Load_MissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultEmbeddingProvider, settings.Embedding.Provider)
	assert.Equal(t, domain.DefaultEmbeddingModel, settings.Embedding.Model)
	assert.Equal(t, domain.DefaultChunkSize, settings.Chunking.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.Chunking.ChunkOverlap)
	assert.Equal(t, domain.DefaultTopK, settings.Retrieval.TopK)
	assert.True(t, settings.Retrieval.Expand)
}

func TestConfigStore_SaveAndLoad_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.ProviderOpenAI
	settings.Embedding.Model = "text-embedding-3-small"
	settings.Embedding.APIKey = "sk-test"
	settings.Chunking.ChunkSize = 1500
	settings.Chunking.ChunkOverlap = 300
	settings.Retrieval.TopK = 10
	settings.GitHub.Token = "ghp_test"
	require.NoError(t, store.Save(settings))

	// New store instance loads from disk
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	loaded, err := store2.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderOpenAI, loaded.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", loaded.Embedding.Model)
	assert.Equal(t, "sk-test", loaded.Embedding.APIKey)
	assert.Equal(t, 1500, loaded.Chunking.ChunkSize)
	assert.Equal(t, 300, loaded.Chunking.ChunkOverlap)
	assert.Equal(t, 10, loaded.Retrieval.TopK)
	assert.Equal(t, "ghp_test", loaded.GitHub.Token)
}

func TestConfigStore_Load_PartialFileAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	partial := []byte("[embedding]\nmodel = \"mxbai-embed-large\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), partial, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, "mxbai-embed-large", settings.Embedding.Model)
	assert.Equal(t, domain.DefaultEmbeddingProvider, settings.Embedding.Provider)
	assert.Equal(t, domain.DefaultOllamaBaseURL, settings.Embedding.BaseURL)
	assert.Equal(t, domain.DefaultChunkSize, settings.Chunking.ChunkSize)
	assert.Equal(t, domain.DefaultLLMMaxTokens, settings.LLM.MaxTokens)
}

func TestConfigStore_Load_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()

	corrupted := []byte("this is not valid TOML {{{[[")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), corrupted, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, err = store.Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config.toml")
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultEmbeddingModel, settings.Embedding.Model)
}

func TestConfigStore_Save_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Save(domain.DefaultAppSettings()))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err = store.Save(domain.DefaultAppSettings())

	assert.Error(t, err)
}

func TestConfigStore_Save_OverwritesPrevious(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	settings.Retrieval.TopK = 7
	require.NoError(t, store.Save(settings))

	settings.Retrieval.TopK = 12
	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.Retrieval.TopK)
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Save(domain.DefaultAppSettings()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(topK int) {
			defer wg.Done()
			settings := domain.DefaultAppSettings()
			settings.Retrieval.TopK = topK
			_ = store.Save(settings)
		}(i + 1)
		go func() {
			defer wg.Done()
			settings, err := store.Load()
			if err == nil {
				assert.Positive(t, settings.Retrieval.TopK)
			}
		}()
	}
	wg.Wait()
}
