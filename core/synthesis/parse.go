package synthesis

import (
	"encoding/json"
)

// extractJSONBlock locates the first top-level JSON object in model output,
// tolerating surrounding prose and markdown fencing. Returns the empty
// string if no balanced object is found.
func extractJSONBlock(text string) string {
	start, end := findJSONBounds(text)
	if start == -1 || end == -1 {
		return ""
	}
	return text[start:end]
}

func findJSONBounds(text string) (int, int) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if start != -1 {
				inString = true
			}
		case '{':
			if start == -1 {
				start = i
			}
			depth++
		case '}':
			if start == -1 {
				continue
			}
			depth--
			if depth == 0 {
				return start, i + 1
			}
		}
	}
	return -1, -1
}

// decodePayload extracts and unmarshals the first JSON object in a model
// response. Both a missing object and a parse failure abort the operation.
func decodePayload[T any](op, content string) (*T, error) {
	block := extractJSONBlock(content)
	if block == "" {
		return nil, &GenerationOutputError{Op: op, Reason: "no JSON object in response"}
	}

	var payload T
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, &GenerationOutputError{Op: op, Reason: "response is not valid JSON", Err: err}
	}
	return &payload, nil
}

// documentPayload is the structured shape expected from create, update, and
// reformat compositions.
type documentPayload struct {
	Title          string                 `json:"title"`
	Content        string                 `json:"content"`
	Summary        string                 `json:"summary"`
	Scope          *scopePayload          `json:"scope_definition,omitempty"`
	Contradictions []contradictionPayload `json:"contradictions,omitempty"`
	Changes        []string               `json:"changes,omitempty"`
}

type scopePayload struct {
	Covers          string   `json:"covers"`
	FutureAdditions []string `json:"future_additions"`
	NotIncluded     []string `json:"not_included"`
}

func (p *scopePayload) toScope() ScopeDefinition {
	return ScopeDefinition{
		Covers:          p.Covers,
		FutureAdditions: p.FutureAdditions,
		NotIncluded:     p.NotIncluded,
	}
}

type contradictionPayload struct {
	Type           string                     `json:"type"`
	Description    string                     `json:"description"`
	Sides          []contradictionSidePayload `json:"sides"`
	Severity       string                     `json:"severity"`
	Recommendation string                     `json:"recommendation"`
}

type contradictionSidePayload struct {
	SourceNumber int    `json:"source_number"`
	Excerpt      string `json:"excerpt"`
}

// matchPayload is the structured shape expected from the match composition.
type matchPayload struct {
	Matches   []matchEntryPayload `json:"matches"`
	CreateNew *createNewPayload   `json:"create_new,omitempty"`
}

type matchEntryPayload struct {
	SkillID   string  `json:"skill_id"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

type createNewPayload struct {
	Recommended    bool   `json:"recommended"`
	Rationale      string `json:"rationale"`
	SuggestedTitle string `json:"suggested_title"`
}
