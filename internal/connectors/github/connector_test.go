package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

func testRepoID(t *testing.T) domain.RepositoryID {
	t.Helper()
	id, err := domain.ParseRepositoryID("github.com/owner/repo")
	require.NoError(t, err)
	return id
}

func TestNew(t *testing.T) {
	t.Run("creates connector bound to repository", func(t *testing.T) {
		id := testRepoID(t)

		connector := New(id, Config{})

		require.NotNil(t, connector)
		assert.Equal(t, id, connector.Repo())
		assert.NotNil(t, connector.client)
	})

	t.Run("applies config defaults", func(t *testing.T) {
		connector := New(testRepoID(t), Config{})

		assert.Equal(t, int64(DefaultMaxFileSize), connector.config.MaxFileSize)
	})

	t.Run("keeps explicit max file size", func(t *testing.T) {
		connector := New(testRepoID(t), Config{MaxFileSize: 2048})

		assert.Equal(t, int64(2048), connector.config.MaxFileSize)
	})
}

func TestConnector_Type(t *testing.T) {
	connector := New(testRepoID(t), Config{})

	assert.Equal(t, "github", connector.Type())
}

func TestConnector_Capabilities(t *testing.T) {
	caps := New(testRepoID(t), Config{}).Capabilities()

	assert.False(t, caps.SupportsWatch, "no webhooks in a CLI")
	assert.True(t, caps.RequiresAuth)
	assert.True(t, caps.SupportsRateLimiting)
}

func TestConnector_Close(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		connector := New(testRepoID(t), Config{})

		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
	})

	t.Run("validate after close fails", func(t *testing.T) {
		connector := New(testRepoID(t), Config{})
		require.NoError(t, connector.Close())

		err := connector.Validate(context.Background())

		assert.ErrorIs(t, err, domain.ErrConnectorClosed)
	})

	t.Run("files after close reports error", func(t *testing.T) {
		connector := New(testRepoID(t), Config{})
		require.NoError(t, connector.Close())

		files, errs := connector.Files(context.Background())

		got, errors := drainFiles(t, files, errs)
		assert.Empty(t, got)
		require.Len(t, errors, 1)
		assert.ErrorIs(t, errors[0], domain.ErrConnectorClosed)
	})
}

func TestConnector_Validate_NotGitHubRepo(t *testing.T) {
	id, err := domain.ParseRepositoryID("/some/local/path")
	require.NoError(t, err)
	connector := New(id, Config{})

	verr := connector.Validate(context.Background())

	assert.ErrorIs(t, verr, domain.ErrInvalidInput)
}

func TestConnector_Watch_Unsupported(t *testing.T) {
	connector := New(testRepoID(t), Config{})

	changes, err := connector.Watch(context.Background())

	assert.Nil(t, changes)
	assert.ErrorIs(t, err, domain.ErrWatchUnsupported)
}

func TestBuildFileURI(t *testing.T) {
	uri := buildFileURI("owner", "repo", "main", "docs/guide.md")

	assert.Equal(t, "github://owner/repo/blob/main/docs/guide.md", uri)
}

func TestRateLimiter(t *testing.T) {
	t.Run("creates rate limiter with defaults", func(t *testing.T) {
		rl := NewRateLimiter()

		require.NotNil(t, rl)
		assert.Equal(t, GitHubRateLimit, rl.Limit())
		assert.Equal(t, GitHubRateLimit, rl.Remaining())
	})

	t.Run("updates from response headers", func(t *testing.T) {
		rl := NewRateLimiter()
		reset := time.Now().Add(time.Hour)

		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set(HeaderRateRemaining, "42")
		resp.Header.Set(HeaderRateLimit, "5000")
		resp.Header.Set(HeaderRateReset, fmt.Sprintf("%d", reset.Unix()))

		rl.UpdateFromResponse(resp)

		assert.Equal(t, 42, rl.Remaining())
		assert.Equal(t, 5000, rl.Limit())
		assert.WithinDuration(t, reset, rl.ResetTime(), time.Second)
	})

	t.Run("buffer scales with reported limit", func(t *testing.T) {
		rl := NewRateLimiter()

		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set(HeaderRateLimit, "60")
		rl.UpdateFromResponse(resp)
		assert.Equal(t, 1, rl.minBuffer)

		resp.Header.Set(HeaderRateLimit, "5000")
		rl.UpdateFromResponse(resp)
		assert.Equal(t, 100, rl.minBuffer)
	})

	t.Run("wait respects context cancellation", func(t *testing.T) {
		rl := NewRateLimiter()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := rl.Wait(ctx)

		assert.Error(t, err)
	})
}

func TestClient_WrapError(t *testing.T) {
	client := NewClient("")

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, client.wrapError(nil, "test operation"))
	})

	t.Run("wraps github ErrorResponse as APIError", func(t *testing.T) {
		testURL, _ := url.Parse("https://api.github.com/repos/test/repo")
		ghErr := &gh.ErrorResponse{
			Response: &http.Response{
				StatusCode: 404,
				Request:    &http.Request{URL: testURL},
			},
			Message: "Not Found",
		}

		err := client.wrapError(ghErr, "get repo")

		require.Error(t, err)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 404, apiErr.StatusCode)
		assert.Equal(t, "Not Found", apiErr.Message)
	})

	t.Run("wraps github RateLimitError", func(t *testing.T) {
		ghErr := &gh.RateLimitError{
			Rate: gh.Rate{
				Limit:     5000,
				Remaining: 0,
				Reset:     gh.Timestamp{Time: time.Now().Add(time.Hour)},
			},
		}

		err := client.wrapError(ghErr, "get tree")

		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("wraps generic error with operation", func(t *testing.T) {
		err := client.wrapError(errors.New("network error"), "fetch data")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch data")
		assert.Contains(t, err.Error(), "network error")
	})
}

func TestErrorPredicates(t *testing.T) {
	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, IsNotFound(&APIError{StatusCode: 404}))
		assert.True(t, IsNotFound(ErrRepoNotFound))
		assert.False(t, IsNotFound(&APIError{StatusCode: 500}))
		assert.False(t, IsNotFound(errors.New("other")))
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
		assert.False(t, IsUnauthorized(&APIError{StatusCode: 403}))
	})

	t.Run("IsForbidden", func(t *testing.T) {
		assert.True(t, IsForbidden(&APIError{StatusCode: 403}))
		assert.False(t, IsForbidden(&APIError{StatusCode: 401}))
	})

	t.Run("IsRateLimited", func(t *testing.T) {
		assert.True(t, IsRateLimited(&RateLimitError{}))
		assert.False(t, IsRateLimited(errors.New("other")))
	})
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 422, Message: "validation failed", URL: "https://api.github.com/x"}

	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "validation failed")
}

func TestRateLimitError_Error(t *testing.T) {
	reset := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := &RateLimitError{ResetAt: reset, Remaining: 0, Limit: 5000}

	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Contains(t, err.Error(), "2025-06-01T12:00:00Z")
}

// ==================== Streaming ====================

// newStubConnector points a connector at a stub API server.
func newStubConnector(t *testing.T, id domain.RepositoryID, cfg Config, handler http.Handler) *Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.applyDefaults()
	client := NewClientWithHTTPClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.GitHub().BaseURL = base
	// No proactive throttling against the stub
	client.rateLimiter.bucket.SetLimit(rate.Inf)

	return &Connector{repo: id, config: cfg, client: client}
}

// drainFiles consumes both stream channels until they close.
func drainFiles(t *testing.T, files <-chan domain.RepoFile, errs <-chan error) ([]domain.RepoFile, []error) {
	t.Helper()
	var got []domain.RepoFile
	var failures []error
	for files != nil || errs != nil {
		select {
		case f, ok := <-files:
			if !ok {
				files = nil
				continue
			}
			got = append(got, f)
		case e, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			failures = append(failures, e)
		}
	}
	return got, failures
}

func stubRepoHandler(t *testing.T, blobs map[string]string, failSHAs map[string]bool) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/owner/repo", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"repo","default_branch":"main","owner":{"login":"owner"}}`)
	})

	mux.HandleFunc("/repos/owner/repo/git/trees/main", func(w http.ResponseWriter, _ *http.Request) {
		type entry struct {
			Path string `json:"path"`
			Type string `json:"type"`
			SHA  string `json:"sha"`
			Size int    `json:"size"`
		}
		entries := []entry{{Path: "src", Type: "tree", SHA: "dir-sha"}}
		for path, content := range blobs {
			entries = append(entries, entry{Path: path, Type: "blob", SHA: "sha-" + path, Size: len(content)})
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"sha": "tree-sha", "tree": entries}))
	})

	mux.HandleFunc("/repos/owner/repo/git/blobs/", func(w http.ResponseWriter, r *http.Request) {
		sha := r.URL.Path[len("/repos/owner/repo/git/blobs/"):]
		if failSHAs[sha] {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"boom"}`)
			return
		}
		for path, content := range blobs {
			if "sha-"+path == sha {
				encoded := base64.StdEncoding.EncodeToString([]byte(content))
				require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
					"sha": sha, "encoding": "base64", "content": encoded, "size": len(content),
				}))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	return mux
}

func TestConnector_List_ReturnsTreeEntries(t *testing.T) {
	blobs := map[string]string{
		"README.md":   "# Title",
		"src/main.go": "package main",
	}
	connector := newStubConnector(t, testRepoID(t), Config{}, stubRepoHandler(t, blobs, nil))

	entries, err := connector.List(context.Background())
	require.NoError(t, err)

	byPath := make(map[string]domain.TreeEntry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}
	require.Contains(t, byPath, "src")
	assert.True(t, byPath["src"].IsDir)
	require.Contains(t, byPath, "README.md")
	assert.False(t, byPath["README.md"].IsDir)
	require.Contains(t, byPath, "src/main.go")
	assert.False(t, byPath["src/main.go"].IsDir)
}

func TestConnector_List_FailsAfterClose(t *testing.T) {
	connector := newStubConnector(t, testRepoID(t), Config{}, stubRepoHandler(t, nil, nil))
	require.NoError(t, connector.Close())

	_, err := connector.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnectorClosed)
}

func TestConnector_Files_StreamsCandidates(t *testing.T) {
	blobs := map[string]string{
		"README.md": "# Title\n\nBody text",
		"main.go":   "package main",
	}
	connector := newStubConnector(t, testRepoID(t), Config{}, stubRepoHandler(t, blobs, nil))

	files, errs := connector.Files(context.Background())
	got, failures := drainFiles(t, files, errs)

	assert.Empty(t, failures)
	require.Len(t, got, 1, "only the markdown file qualifies without code ingestion")
	f := got[0]
	assert.Equal(t, "README.md", f.Path)
	assert.Equal(t, "# Title\n\nBody text", f.Content)
	assert.Equal(t, "sha-README.md", f.SHA)
	assert.Equal(t, "github://owner/repo/blob/main/README.md", f.URI)
}

func TestConnector_Files_IncludesCodeWhenEnabled(t *testing.T) {
	blobs := map[string]string{
		"README.md": "# Title",
		"main.go":   "package main",
	}
	connector := newStubConnector(t, testRepoID(t), Config{IncludeCode: true}, stubRepoHandler(t, blobs, nil))

	files, errs := connector.Files(context.Background())
	got, failures := drainFiles(t, files, errs)

	assert.Empty(t, failures)
	assert.Len(t, got, 2)
}

func TestConnector_Files_ReportsBlobFailureAndContinues(t *testing.T) {
	blobs := map[string]string{
		"README.md":     "# Title",
		"docs/guide.md": "# Guide",
	}
	failing := map[string]bool{"sha-README.md": true}
	connector := newStubConnector(t, testRepoID(t), Config{}, stubRepoHandler(t, blobs, failing))

	files, errs := connector.Files(context.Background())
	got, failures := drainFiles(t, files, errs)

	require.Len(t, got, 1)
	assert.Equal(t, "docs/guide.md", got[0].Path)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error(), "README.md")
}

func TestConnector_Files_FatalOnMissingRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	connector := newStubConnector(t, testRepoID(t), Config{}, mux)

	files, errs := connector.Files(context.Background())
	got, failures := drainFiles(t, files, errs)

	assert.Empty(t, got)
	require.Len(t, failures, 1)
	assert.True(t, IsNotFound(failures[0]))
}
