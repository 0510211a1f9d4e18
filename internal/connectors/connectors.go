package connectors

import (
	"github.com/custodia-labs/docdex/internal/connectors/filesystem"
	"github.com/custodia-labs/docdex/internal/connectors/github"
	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
)

// Options configures connector construction. Zero values fall back to
// each connector's defaults.
type Options struct {
	// GitHubToken authenticates GitHub API access. Optional for public
	// repositories.
	GitHubToken string

	// Branch overrides the default branch for GitHub sources.
	Branch string

	// IncludeCode enables ingestion of recognised source files.
	IncludeCode bool

	// MaxFileSize caps individual files in bytes.
	MaxFileSize int64
}

// For builds the connector for repo. GitHub-hosted repositories get the
// API connector; everything else is read from source as a local
// directory.
func For(repo domain.RepositoryID, source string, opts Options) driven.Connector {
	if repo.IsGitHub() {
		return github.New(repo, github.Config{
			Token:       opts.GitHubToken,
			Branch:      opts.Branch,
			IncludeCode: opts.IncludeCode,
			MaxFileSize: opts.MaxFileSize,
		})
	}
	return filesystem.New(repo, source, filesystem.Config{
		IncludeCode: opts.IncludeCode,
		MaxFileSize: opts.MaxFileSize,
	})
}

// ResolveWebURL converts a connector URI into something a browser or
// editor can open. Unknown schemes return the input unchanged.
func ResolveWebURL(uri string) string {
	if resolved := github.ResolveWebURL(uri); resolved != "" {
		return resolved
	}
	return filesystem.ResolveWebURL(uri)
}
