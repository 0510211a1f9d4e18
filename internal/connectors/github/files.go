package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// resolveTree fetches the full recursive tree for the requested branch,
// falling back to the repository default branch when none is configured.
func resolveTree(
	ctx context.Context, client *Client, id domain.RepositoryID, branch string,
) (*gh.Tree, string, error) {
	repo, err := client.GetRepository(ctx, id.Owner, id.Name)
	if err != nil {
		return nil, "", fmt.Errorf("get repository %s: %w", id, err)
	}

	if branch == "" {
		branch = repo.GetDefaultBranch()
	}

	tree, err := client.GetTree(ctx, id.Owner, id.Name, branch)
	if err != nil {
		return nil, "", fmt.Errorf("get tree %s@%s: %w", id, branch, err)
	}
	return tree, branch, nil
}

// listTree converts the recursive tree into contents-free entries.
func listTree(ctx context.Context, client *Client, id domain.RepositoryID, cfg Config) ([]domain.TreeEntry, error) {
	tree, _, err := resolveTree(ctx, client, id, cfg.Branch)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TreeEntry, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		entries = append(entries, domain.TreeEntry{
			Path:  entry.GetPath(),
			IsDir: entry.GetType() == "tree",
		})
	}
	return entries, nil
}

// streamFiles walks the repository tree and sends each candidate file.
// Fatal failures (repository or tree lookup) stop the stream; a blob
// that cannot be fetched is reported and skipped.
func streamFiles(
	ctx context.Context, client *Client, id domain.RepositoryID, cfg Config,
	out chan<- domain.RepoFile, errs chan<- error,
) {
	tree, branch, err := resolveTree(ctx, client, id, cfg.Branch)
	if err != nil {
		sendErr(ctx, errs, err)
		return
	}

	for _, entry := range tree.Entries {
		if ctx.Err() != nil {
			return
		}
		if entry.GetType() != "blob" {
			continue
		}

		path := entry.GetPath()
		if !domain.IsIngestablePath(path, cfg.IncludeCode) {
			continue
		}
		if int64(entry.GetSize()) > cfg.MaxFileSize {
			continue
		}

		content, err := fetchBlobContent(ctx, client, id.Owner, id.Name, entry.GetSHA())
		if err != nil {
			if !sendErr(ctx, errs, fmt.Errorf("fetch %s: %w", path, err)) {
				return
			}
			continue
		}

		// Extension filters miss binary content in text-named files
		if !utf8.Valid(content) {
			continue
		}

		file := domain.RepoFile{
			Path:    path,
			Content: string(content),
			SHA:     entry.GetSHA(),
			Size:    int64(len(content)),
			URI:     buildFileURI(id.Owner, id.Name, branch, path),
		}
		select {
		case <-ctx.Done():
			return
		case out <- file:
		}
	}
}

// sendErr delivers an error unless the context is cancelled.
// Returns false when the stream should stop.
func sendErr(ctx context.Context, errs chan<- error, err error) bool {
	select {
	case <-ctx.Done():
		return false
	case errs <- err:
		return true
	}
}

// fetchBlobContent fetches the content of a blob and decodes it.
func fetchBlobContent(ctx context.Context, client *Client, owner, repo, sha string) ([]byte, error) {
	blob, err := client.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, err
	}

	// Decode base64 content
	if blob.GetEncoding() == "base64" {
		// Remove any whitespace from base64 content
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		return base64.StdEncoding.DecodeString(content)
	}

	return []byte(blob.GetContent()), nil
}

// buildFileURI creates a URI for a file.
func buildFileURI(owner, repo, branch, path string) string {
	return fmt.Sprintf("github://%s/%s/blob/%s/%s", owner, repo, branch, path)
}
