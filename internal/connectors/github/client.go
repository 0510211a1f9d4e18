package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with rate-limited helpers.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub API client. An empty token yields an
// unauthenticated client, which GitHub limits to 60 requests per hour.
func NewClient(token string) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = DefaultTimeout
	}

	return &Client{
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
}

// NewClientWithHTTPClient creates a client with a custom http.Client.
// Used by tests to point the client at a stub server.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
}

// GitHub returns the underlying go-github client.
func (c *Client) GitHub() *gh.Client {
	return c.gh
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// GetRepository fetches repository metadata, including the default branch.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, c.wrapError(err, "get repo")
	}

	c.updateRateLimitFromResponse(resp)
	return repository, nil
}

// GetTree fetches the entire tree for a repository recursively.
// This is efficient for getting all file paths in one API call.
func (c *Client) GetTree(ctx context.Context, owner, repo, sha string) (*gh.Tree, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, sha, true) // recursive=true
	if err != nil {
		return nil, c.wrapError(err, "get tree")
	}

	c.updateRateLimitFromResponse(resp)
	return tree, nil
}

// GetBlob fetches a blob (file content) by its SHA.
func (c *Client) GetBlob(ctx context.Context, owner, repo, sha string) (*gh.Blob, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	blob, resp, err := c.gh.Git.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, c.wrapError(err, "get blob")
	}

	c.updateRateLimitFromResponse(resp)
	return blob, nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for GitHub error response
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
	}

	// Check for rate limit error
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
