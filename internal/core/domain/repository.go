package domain

import (
	"regexp"
	"strings"
)

// githubRepoPattern matches github.com repository URLs in their common
// spellings: with or without scheme, with or without www, trailing
// path/query/fragment ignored.
var githubRepoPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?github\.com/([^/]+)/([^/?#]+)`)

// ownerSlugPattern matches a bare GitHub owner segment (no dots, no slashes).
var ownerSlugPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)

// collectionCharPattern matches characters that are not valid in a
// collection name and must collapse to underscores.
var collectionCharPattern = regexp.MustCompile(`[^a-z0-9_-]`)

// underscoreRunPattern matches runs of underscores produced by sanitising.
var underscoreRunPattern = regexp.MustCompile(`_+`)

// RepositoryID identifies a repository after boundary normalization.
// Inputs arrive as full URLs, bare "owner/name" pairs, or opaque local
// identifiers; they are parsed exactly once here and never re-interpreted
// downstream.
type RepositoryID struct {
	// Owner is the repository owner or organisation.
	// Empty for local paths and opaque identifiers.
	Owner string

	// Name is the repository name, or the full sanitised identifier
	// when no owner could be derived.
	Name string

	// URL is the original input, preserved for display and metadata.
	URL string
}

// ParseRepositoryID normalizes a repository reference.
// Accepted forms:
//   - https://github.com/owner/name (any scheme/www/.git spelling)
//   - github.com/owner/name
//   - owner/name
//   - anything else (local path, opaque label) becomes a Name-only ID
func ParseRepositoryID(input string) (RepositoryID, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return RepositoryID{}, ErrInvalidInput
	}

	if m := githubRepoPattern.FindStringSubmatch(trimmed); m != nil {
		return RepositoryID{
			Owner: strings.ToLower(m[1]),
			Name:  strings.ToLower(strings.TrimSuffix(m[2], ".git")),
			URL:   trimmed,
		}, nil
	}

	// Bare owner/name with no scheme, host, or path separators beyond one.
	if parts := strings.Split(trimmed, "/"); len(parts) == 2 &&
		ownerSlugPattern.MatchString(parts[0]) && parts[1] != "" {
		return RepositoryID{
			Owner: strings.ToLower(parts[0]),
			Name:  strings.ToLower(strings.TrimSuffix(parts[1], ".git")),
			URL:   trimmed,
		}, nil
	}

	return RepositoryID{
		Name: strings.ToLower(trimmed),
		URL:  trimmed,
	}, nil
}

// CollectionName derives the persisted vector collection name.
// The derivation is deterministic and stable across URL spellings:
// owner and name are lowercased and joined with "_", every character
// outside [a-z0-9_-] becomes "_", runs collapse, and leading/trailing
// separators are stripped.
func (r RepositoryID) CollectionName() string {
	base := r.Name
	if r.Owner != "" {
		base = r.Owner + "_" + r.Name
	}

	name := collectionCharPattern.ReplaceAllString(strings.ToLower(base), "_")
	name = underscoreRunPattern.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// IsGitHub reports whether the ID refers to a GitHub-hosted repository.
func (r RepositoryID) IsGitHub() bool {
	return r.Owner != ""
}

// String returns the canonical display form.
func (r RepositoryID) String() string {
	if r.Owner != "" {
		return r.Owner + "/" + r.Name
	}
	return r.Name
}
