package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/logger"
)

// Ensure QueryPlanner supports prompt injection.
var _ driven.PromptStoreAware = (*QueryPlanner)(nil)

const (
	// minQueryLen and maxQueryLen bound accepted expansion queries.
	// Shorter lines are noise, longer ones are prose the model failed
	// to condense.
	minQueryLen = 5
	maxQueryLen = 80

	// minExpansionQueries floors the expansion target so thin briefs
	// still fan out.
	minExpansionQueries = 3

	expansionMaxTokens   = 512
	expansionTemperature = 0.3

	// significantWordLen is the shortest word counted when matching
	// queries back to brief components.
	significantWordLen = 5
)

// defaultExpansionPrompt is used when no prompt store is injected.
// The file-based store ships the same template.
const defaultExpansionPrompt = `Generate %d short search queries for retrieving technical documentation relevant to this project brief. Cover every objective and requirement at least once.
Return ONLY the queries, one per line, without numbering or commentary.

Brief:
%s

Queries:`

// queryPreambles open the chatter lines some models emit before the
// actual queries.
var queryPreambles = []string{
	"here are",
	"here's",
	"based on",
	"sure",
	"certainly",
	"below are",
	"the following",
}

// clauseVerbs introduce the useful clause inside an overlong sentence.
var clauseVerbs = []string{
	"search for ",
	"investigate ",
	"locate ",
	"find ",
	"look for ",
}

// QueryPlanner turns a requirements brief into retrieval queries. With an
// LLM it plans several targeted queries; without one, callers use the
// flattened summary via Basic.
type QueryPlanner struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewQueryPlanner creates a new query planner.
//
// Parameters:
//   - llm: text generation for expansion, optional (can be nil)
func NewQueryPlanner(llm driven.LLMService) *QueryPlanner {
	return &QueryPlanner{llm: llm}
}

// SetPromptStore injects a store for the expansion prompt template.
func (p *QueryPlanner) SetPromptStore(store driven.PromptStore) {
	p.prompts = store
}

// Basic plans the single flattened-summary query.
func (p *QueryPlanner) Basic(brief domain.Brief) domain.QueryPlan {
	return domain.QueryPlan{
		Queries: []domain.PlanQuery{{
			Text:   brief.Summary(),
			Source: domain.QuerySourceSummary,
		}},
	}
}

// Expand plans up to maxQueries targeted queries with the LLM. When the
// model's output yields no usable queries the plan falls back to the
// summary; a generation failure is returned for the caller to recover.
func (p *QueryPlanner) Expand(ctx context.Context, brief domain.Brief, maxQueries int) (domain.QueryPlan, error) {
	if p.llm == nil {
		return domain.QueryPlan{}, fmt.Errorf("%w: no llm for query expansion", domain.ErrNotConfigured)
	}

	target := expansionTarget(brief, maxQueries)
	prompt := fmt.Sprintf(p.promptTemplate(), target, briefContext(brief))

	response, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   expansionMaxTokens,
		Temperature: expansionTemperature,
	})
	if err != nil {
		return domain.QueryPlan{}, fmt.Errorf("generate queries: %w", err)
	}

	queries := parseQueries(response, target)
	if len(queries) == 0 {
		logger.Warn("Query expansion produced no usable queries, using summary")
		return p.Basic(brief), nil
	}

	tagQueries(queries, brief)
	logger.Debug("Planned %d expansion queries (target %d)", len(queries), target)

	return domain.QueryPlan{Queries: queries, Expanded: true}, nil
}

// expansionTarget sizes the plan from the brief's richness, clamped to
// the configured maximum.
func expansionTarget(brief domain.Brief, maxQueries int) int {
	if maxQueries <= 0 {
		maxQueries = domain.DefaultMaxQueries
	}
	objectives, requirements := brief.ComponentCount()
	target := 2*objectives + requirements + 3
	if target > maxQueries {
		target = maxQueries
	}
	if target < minExpansionQueries {
		target = minExpansionQueries
	}
	return target
}

// promptTemplate returns the stored expansion template, or the embedded
// default when no store is injected or the load fails.
func (p *QueryPlanner) promptTemplate() string {
	if p.prompts == nil {
		return defaultExpansionPrompt
	}
	tmpl, err := p.prompts.Load(driven.PromptQueryExpansion)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		return defaultExpansionPrompt
	}
	return tmpl
}

// briefContext renders every objective and requirement for the prompt.
func briefContext(brief domain.Brief) string {
	var b strings.Builder

	if title := strings.TrimSpace(brief.Info.Title); title != "" {
		fmt.Fprintf(&b, "Project: %s\n", title)
	}
	if summary := strings.TrimSpace(brief.ExecutiveSummary); summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", summary)
	}

	if len(brief.Objectives) > 0 {
		b.WriteString("Objectives:\n")
		for _, o := range brief.Objectives {
			writeComponentLine(&b, o.ID, o.Objective,
				labelled("priority", o.Priority), labelled("success", o.SuccessCriteria))
		}
	}
	if len(brief.Requirements.Functional) > 0 {
		b.WriteString("Functional requirements:\n")
		for _, r := range brief.Requirements.Functional {
			writeComponentLine(&b, r.ID, r.Description, labelled("priority", r.Priority))
		}
	}
	if len(brief.Requirements.NonFunctional) > 0 {
		b.WriteString("Non-functional requirements:\n")
		for _, r := range brief.Requirements.NonFunctional {
			writeComponentLine(&b, r.ID, r.Description,
				labelled("category", r.Category), labelled("priority", r.Priority))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeComponentLine writes one "- [ID] text (label: value)" line.
func writeComponentLine(b *strings.Builder, id, text string, extras ...string) {
	b.WriteString("- ")
	if id != "" {
		fmt.Fprintf(b, "[%s] ", id)
	}
	b.WriteString(text)
	for _, extra := range extras {
		if extra != "" {
			fmt.Fprintf(b, " (%s)", extra)
		}
	}
	b.WriteString("\n")
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

// parseQueries extracts usable queries from a model response, at most
// target of them, in response order.
func parseQueries(response string, target int) []domain.PlanQuery {
	var queries []domain.PlanQuery
	for _, line := range strings.Split(response, "\n") {
		text, ok := cleanQueryLine(line)
		if !ok {
			continue
		}
		queries = append(queries, domain.PlanQuery{
			Text:   text,
			Source: domain.QuerySourceExpansion,
		})
		if len(queries) == target {
			break
		}
	}
	return queries
}

// cleanQueryLine normalises one response line, reporting whether a
// usable query remains.
func cleanQueryLine(line string) (string, bool) {
	text := stripListMarker(strings.TrimSpace(line))
	text = strings.TrimSpace(strings.Trim(text, `"'`))
	if text == "" {
		return "", false
	}

	lower := strings.ToLower(text)
	for _, preamble := range queryPreambles {
		if strings.HasPrefix(lower, preamble) {
			return "", false
		}
	}

	if len(text) > maxQueryLen {
		text = extractClause(text)
		if len(text) > maxQueryLen {
			return "", false
		}
	}
	if len(text) < minQueryLen || !containsLetter(text) {
		return "", false
	}
	return text, true
}

// stripListMarker removes leading bullets and "1." / "2)" numbering.
func stripListMarker(text string) string {
	text = strings.TrimLeft(text, "-*• \t")
	trimmed := strings.TrimLeft(text, "0123456789")
	if trimmed != text && (strings.HasPrefix(trimmed, ".") || strings.HasPrefix(trimmed, ")")) {
		trimmed = trimmed[1:]
	}
	return strings.TrimSpace(trimmed)
}

// extractClause reduces an overlong sentence to the clause after a
// search verb, e.g. "You should search for X" becomes "X".
func extractClause(text string) string {
	lower := strings.ToLower(text)
	for _, verb := range clauseVerbs {
		if idx := strings.Index(lower, verb); idx >= 0 {
			return strings.TrimSpace(text[idx+len(verb):])
		}
	}
	return text
}

func containsLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// tagQueries links each query to the brief objective or requirement it
// most plausibly covers, by shared significant words. Queries sharing
// fewer than two words with every component stay untagged.
func tagQueries(queries []domain.PlanQuery, brief domain.Brief) {
	components := briefComponents(brief)
	if len(components) == 0 {
		return
	}
	for i := range queries {
		queries[i].Component = bestComponent(queries[i].Text, components)
	}
}

// briefComponent pairs a component id with its significant words.
type briefComponent struct {
	id    string
	words map[string]bool
}

// briefComponents lists taggable components in brief order: objectives,
// then functional, then non-functional requirements.
func briefComponents(brief domain.Brief) []briefComponent {
	var out []briefComponent
	add := func(id, text string) {
		if id == "" {
			return
		}
		out = append(out, briefComponent{id: id, words: significantWords(text)})
	}
	for _, o := range brief.Objectives {
		add(o.ID, o.Objective+" "+o.SuccessCriteria)
	}
	for _, r := range brief.Requirements.Functional {
		add(r.ID, r.Description)
	}
	for _, r := range brief.Requirements.NonFunctional {
		add(r.ID, r.Description)
	}
	return out
}

// bestComponent returns the id sharing the most significant words with
// the query, requiring at least two. Ties keep the earliest component.
func bestComponent(query string, components []briefComponent) string {
	queryWords := significantWords(query)

	bestID := ""
	bestShared := 0
	for _, c := range components {
		shared := 0
		for w := range queryWords {
			if c.words[w] {
				shared++
			}
		}
		if shared > bestShared {
			bestShared = shared
			bestID = c.id
		}
	}
	if bestShared < 2 {
		return ""
	}
	return bestID
}

// significantWords lowercases the text and keeps words long enough to be
// discriminating.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range fields {
		if len(w) >= significantWordLen {
			words[w] = true
		}
	}
	return words
}
