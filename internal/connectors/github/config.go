package github

// DefaultMaxFileSize is the largest blob fetched, in bytes. GitHub
// inlines base64 content for blobs up to 1MB.
const DefaultMaxFileSize = 1 << 20

// Config tunes what the connector fetches from its repository.
type Config struct {
	// Token is a personal access token. Empty means unauthenticated
	// access, which works for public repositories at a far lower rate
	// limit.
	Token string

	// Branch overrides the repository default branch.
	Branch string

	// IncludeCode enables fetching of recognised source files in
	// addition to documentation files.
	IncludeCode bool

	// MaxFileSize is the largest blob fetched, in bytes.
	MaxFileSize int64
}

// applyDefaults fills zero values.
func (c *Config) applyDefaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
}
