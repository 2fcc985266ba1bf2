// Package synthesis implements the skill-synthesis orchestrator: it selects
// a composition for the requested operation and mode, invokes the model once
// through the prompt builder's output, parses the structured response, and
// enforces the citation and scope contracts before anything becomes durable
// state. Persistence is the caller's concern; every operation returns a
// complete replacement document.
package synthesis

import (
	"github.com/curatehq/skillforge/core/providers"
)

// Source is caller-supplied material to synthesize from. Read-only input.
type Source struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
}

// Citation is a stable numeric reference from document content to a source.
// Numeric ids are assigned by the orchestrator, never by the model.
type Citation struct {
	NumericID int    `json:"numeric_id"`
	SourceID  string `json:"source_id"`
	Label     string `json:"label"`
	URL       string `json:"url,omitempty"`
}

// ScopeDefinition declares the boundary of a skill document's subject matter.
type ScopeDefinition struct {
	Covers          string   `json:"covers"`
	FutureAdditions []string `json:"future_additions"`
	NotIncluded     []string `json:"not_included"`
}

// Severity grades a contradiction for the human reviewer.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ContradictionSide is one side of a source disagreement.
type ContradictionSide struct {
	SourceID string `json:"source_id"`
	Label    string `json:"label"`
	Excerpt  string `json:"excerpt"`
}

// Contradiction records a disagreement between two sources. It is purely
// descriptive: the pipeline never auto-resolves one.
type Contradiction struct {
	Type           string               `json:"type"`
	Description    string               `json:"description"`
	Sides          [2]ContradictionSide `json:"sides"`
	Severity       Severity             `json:"severity"`
	Recommendation string               `json:"recommendation"`
}

// SkillDocument is a complete synthesized document. Operations never mutate
// one in place; each produces a full replacement.
type SkillDocument struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	Summary        string          `json:"summary"`
	Scope          ScopeDefinition `json:"scope_definition"`
	Citations      []Citation      `json:"citations"`
	Contradictions []Contradiction `json:"contradictions,omitempty"`
}

// Result is the outcome of a create, update, or reformat operation.
type Result struct {
	Document SkillDocument `json:"document"`

	// Changes is the model's report of what this revision changed, input
	// for the caller's diff review surface.
	Changes []string `json:"changes,omitempty"`

	// CompositionID records which composition produced this result.
	CompositionID string `json:"composition_id"`

	Usage providers.Usage `json:"usage"`
}

// SkillCandidate is an existing document offered to the match operation.
type SkillCandidate struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Covers  string `json:"covers"`
}

// Match is one ranked candidate from the match operation.
type Match struct {
	SkillID   string  `json:"skill_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// MatchResult is the ranked outcome of matching a source against candidate
// skills, with an optional recommendation to create a new document instead.
type MatchResult struct {
	Matches            []Match         `json:"matches"`
	CreateNew          bool            `json:"create_new"`
	CreateNewRationale string          `json:"create_new_rationale,omitempty"`
	SuggestedTitle     string          `json:"suggested_title,omitempty"`
	CompositionID      string          `json:"composition_id"`
	Usage              providers.Usage `json:"usage"`
}
