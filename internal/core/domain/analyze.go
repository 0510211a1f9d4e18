package domain

// RepoSurvey describes the documentation-relevant structure discovered in
// a repository tree before any content is fetched.
type RepoSurvey struct {
	// Repo identifies the surveyed repository.
	Repo RepositoryID

	// DocDirs lists directories that look like documentation roots.
	DocDirs []string

	// ReadmePaths lists README files at any depth.
	ReadmePaths []string

	// Frameworks lists build systems detected from marker files,
	// such as "go" for go.mod or "npm" for package.json.
	Frameworks []string

	// MarkdownCount is the number of markdown files found.
	MarkdownCount int

	// CodeFileCount is the number of recognised code files found.
	CodeFileCount int
}

// PlanEntry is one prioritised step of an ingestion plan. Lower Priority
// values run first.
type PlanEntry struct {
	// Path is the file or directory the step covers.
	Path string

	// Priority orders the plan; lower runs first.
	Priority int

	// Reason explains why the path was selected.
	Reason string
}

// IngestionPlan is a prioritised list of paths worth ingesting, produced
// by the repository analyzer.
type IngestionPlan struct {
	// Repo identifies the repository the plan covers.
	Repo RepositoryID

	// Entries holds the plan steps sorted by Priority.
	Entries []PlanEntry
}
