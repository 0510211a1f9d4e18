package domain

// QuerySource identifies how a planned query was produced.
type QuerySource string

const (
	// QuerySourceSummary marks the flattened brief summary query.
	QuerySourceSummary QuerySource = "summary"

	// QuerySourceExpansion marks a model-generated expansion query.
	QuerySourceExpansion QuerySource = "expansion"
)

// PlanQuery is one retrieval query with its provenance.
type PlanQuery struct {
	// Text is the query string sent to the vector index.
	Text string

	// Source records how the query was produced.
	Source QuerySource

	// Component is the id of the brief objective or requirement the
	// query covers, when one could be derived. Empty otherwise.
	Component string
}

// QueryPlan is the ordered set of queries a retrieval run executes.
type QueryPlan struct {
	// Queries holds the planned queries in execution order. The summary
	// query, when present, is always first.
	Queries []PlanQuery

	// Expanded reports whether model-based expansion succeeded. When
	// false the plan fell back to the single summary query.
	Expanded bool
}

// Texts returns just the query strings, in plan order.
func (p QueryPlan) Texts() []string {
	out := make([]string, len(p.Queries))
	for i, q := range p.Queries {
		out[i] = q.Text
	}
	return out
}

// RetrievalOptions tunes a retrieval run. Zero values fall back to the
// configured defaults.
type RetrievalOptions struct {
	// TopK is the maximum number of results to return after merging.
	TopK int

	// MaxQueries caps how many expansion queries the planner may emit.
	MaxQueries int

	// Expand enables model-based multi-query expansion.
	Expand bool

	// Filter restricts results to chunks whose metadata matches every
	// key/value pair.
	Filter map[string]string
}

// RetrievalResult is one retrieved chunk with provenance.
type RetrievalResult struct {
	// Content is the chunk text.
	Content string

	// Repo is the collection name the result came from.
	Repo string

	// Path is the repository-relative source path.
	Path string

	// LineStart and LineEnd locate the chunk in its source file.
	// Zero when the index holds no line information for the chunk.
	LineStart int
	LineEnd   int

	// Distance is the similarity distance to the query; lower is closer.
	// Only meaningful when HasDistance is true.
	Distance float64

	// HasDistance reports whether the index returned a distance for
	// this result.
	HasDistance bool

	// Query is the planned query that retrieved the result. After a
	// merge it records the query that produced the kept (closest) copy.
	Query string

	// Metadata carries the remaining indexed fields verbatim.
	Metadata map[string]string
}
