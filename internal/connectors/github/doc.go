// Package github implements a connector for a single GitHub repository.
//
// The connector binds to one repository at construction and streams its
// documentation files (and optionally source files) for ingestion. It
// comprises the following components:
//
//   - Connector: implements [driven.Connector] for the bound repository
//   - Client: handles GitHub API communication with rate limiting
//   - Config: tunes branch, file selection, and authentication
//
// # Authentication
//
// A personal access token (classic or fine-grained, created at
// github.com/settings/tokens) raises the API quota to 5,000 requests per
// hour and grants access to private repositories. Without a token the
// connector still works for public repositories at 60 requests per hour.
//
// # Rate Limiting
//
// The connector implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to
//     approximately 1.2 per second, staying well under the authenticated
//     quota whilst maximising throughput.
//
//  2. Reactive handling: the connector monitors X-RateLimit-Remaining
//     and X-RateLimit-Reset headers. When the remaining quota drops below
//     a buffer scaled to the limit, it waits until the reset time.
//
// # Fetch Pipeline
//
// Files streams the repository in three steps:
//
//  1. Resolve the branch (configured override or the repository default)
//  2. Fetch the full tree in one recursive Trees API call
//  3. Fetch and base64-decode each candidate blob
//
// Candidates are documentation files (.md, .markdown, .rst), plus
// recognised source files when code ingestion is enabled. Blobs above the
// size limit and content that is not valid UTF-8 are skipped. A blob that
// fails to fetch is reported on the error channel and the walk continues.
//
// # URIs
//
// Files are addressed as github://{owner}/{repo}/blob/{branch}/{path},
// convertible to a browser URL with [ResolveWebURL].
//
// # Limitations
//
//   - Watch is not supported (no webhook integration in a CLI)
//   - File size limit defaults to 1MB (GitHub inlines blobs below this)
package github
