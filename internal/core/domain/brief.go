package domain

import (
	"encoding/json"
	"strings"
)

// Brief is a structured project brief used to seed retrieval. Callers
// typically decode it from JSON produced by an upstream planning step.
type Brief struct {
	// Info carries document-level fields.
	Info BriefInfo `json:"document_info"`

	// ExecutiveSummary is the one-paragraph project summary.
	ExecutiveSummary string `json:"executive_summary"`

	// Objectives lists the business objectives.
	Objectives []BriefObjective `json:"business_objectives"`

	// Requirements groups the stated requirements.
	Requirements BriefRequirements `json:"requirements"`
}

// BriefInfo carries document-level brief fields.
type BriefInfo struct {
	// Title is the project or document title.
	Title string `json:"title"`
}

// BriefObjective is one business objective.
type BriefObjective struct {
	// ID labels the objective, e.g. "BO-01".
	ID string `json:"id"`

	// Objective is the objective text.
	Objective string `json:"objective"`

	// SuccessCriteria records how success is measured.
	SuccessCriteria string `json:"metric_success_criteria"`

	// Priority is the MoSCoW priority.
	Priority string `json:"priority"`
}

// BriefFunctionalRequirement is one functional requirement.
type BriefFunctionalRequirement struct {
	// ID labels the requirement, e.g. "FR-01".
	ID string `json:"id"`

	// Description is the requirement text.
	Description string `json:"description"`

	// Priority is Critical/High/Medium/Low.
	Priority string `json:"priority"`

	// Rationale records why the requirement exists.
	Rationale string `json:"rationale"`
}

// BriefNonFunctionalRequirement is one non-functional requirement.
type BriefNonFunctionalRequirement struct {
	// ID labels the requirement, e.g. "NFR-01".
	ID string `json:"id"`

	// Description is the requirement text.
	Description string `json:"description"`

	// Category groups the requirement (Speed, Security, ...).
	Category string `json:"category"`

	// Priority is Critical/High/Medium/Low.
	Priority string `json:"priority"`
}

// BriefRequirements groups functional and non-functional requirements.
type BriefRequirements struct {
	// Functional lists the functional requirements.
	Functional []BriefFunctionalRequirement `json:"functional"`

	// NonFunctional lists the non-functional requirements.
	NonFunctional []BriefNonFunctionalRequirement `json:"non_functional"`
}

// Briefs arrive from several producers; some emit bare strings where the
// full model has objects. Each element type accepts both forms.

// UnmarshalJSON accepts either an object or a bare objective string.
func (o *BriefObjective) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &o.Objective)
	}
	type alias BriefObjective
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = BriefObjective(a)
	return nil
}

// UnmarshalJSON accepts either an object or a bare description string.
func (r *BriefFunctionalRequirement) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &r.Description)
	}
	type alias BriefFunctionalRequirement
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = BriefFunctionalRequirement(a)
	return nil
}

// UnmarshalJSON accepts either an object or a bare description string.
func (r *BriefNonFunctionalRequirement) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		return json.Unmarshal(data, &r.Description)
	}
	type alias BriefNonFunctionalRequirement
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = BriefNonFunctionalRequirement(a)
	return nil
}

func isJSONString(data []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(data)), `"`)
}

// briefSummaryMaxRequirements bounds how many functional requirements the
// basic summary includes.
const briefSummaryMaxRequirements = 5

// briefSummaryRequirementLen is the per-requirement truncation length in
// the basic summary.
const briefSummaryRequirementLen = 100

// Summary flattens the brief into a single retrieval query: executive
// summary, comma-joined objectives, title, then up to five functional
// requirements truncated to 100 characters each. An entirely empty brief
// yields a fixed placeholder so retrieval always has a non-empty query.
func (b Brief) Summary() string {
	var parts []string

	if s := strings.TrimSpace(b.ExecutiveSummary); s != "" {
		parts = append(parts, s)
	}
	if objectives := b.objectiveTexts(); len(objectives) > 0 {
		parts = append(parts, strings.Join(objectives, ", "))
	}
	if t := strings.TrimSpace(b.Info.Title); t != "" {
		parts = append(parts, t)
	}

	included := 0
	for _, req := range b.Requirements.Functional {
		text := strings.TrimSpace(req.Description)
		if text == "" {
			continue
		}
		if included >= briefSummaryMaxRequirements {
			break
		}
		if len(text) > briefSummaryRequirementLen {
			text = text[:briefSummaryRequirementLen]
		}
		parts = append(parts, text)
		included++
	}

	if len(parts) == 0 {
		return "general project documentation"
	}
	return strings.Join(parts, " ")
}

func (b Brief) objectiveTexts() []string {
	out := make([]string, 0, len(b.Objectives))
	for _, obj := range b.Objectives {
		if t := strings.TrimSpace(obj.Objective); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ComponentCount returns the number of objectives and requirements,
// the inputs to the expansion target formula.
func (b Brief) ComponentCount() (objectives, requirements int) {
	return len(b.Objectives), len(b.Requirements.Functional) + len(b.Requirements.NonFunctional)
}
