package synthesis

import (
	"fmt"
	"strings"
)

// validateScope checks a scope definition: non-empty covers, well-formed
// list entries. Callers wrap the returned reason in the error type matching
// where the scope came from (PreconditionError for caller-supplied scopes,
// GenerationOutputError for model-produced ones). A failing scope is never
// auto-corrected or partially accepted.
func validateScope(scope ScopeDefinition) error {
	if strings.TrimSpace(scope.Covers) == "" {
		return fmt.Errorf("scope covers is empty")
	}
	for i, item := range scope.FutureAdditions {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("scope future_additions[%d] is empty", i)
		}
	}
	for i, item := range scope.NotIncluded {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("scope not_included[%d] is empty", i)
		}
	}
	return nil
}

// convertContradictions maps payload contradictions onto citation records.
// Each side's source number must reference an assigned citation; a dangling
// number is a model output defect.
func convertContradictions(op string, payloads []contradictionPayload, citations []Citation) ([]Contradiction, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	byNumber := make(map[int]Citation, len(citations))
	for _, c := range citations {
		byNumber[c.NumericID] = c
	}

	result := make([]Contradiction, 0, len(payloads))
	for i, p := range payloads {
		if len(p.Sides) != 2 {
			return nil, &GenerationOutputError{
				Op:     op,
				Reason: fmt.Sprintf("contradictions[%d] has %d sides, want 2", i, len(p.Sides)),
			}
		}

		severity := Severity(p.Severity)
		if !severity.valid() {
			return nil, &GenerationOutputError{
				Op:     op,
				Reason: fmt.Sprintf("contradictions[%d] has invalid severity %q", i, p.Severity),
			}
		}

		var sides [2]ContradictionSide
		for j, side := range p.Sides {
			citation, ok := byNumber[side.SourceNumber]
			if !ok {
				return nil, &GenerationOutputError{
					Op:     op,
					Reason: fmt.Sprintf("contradictions[%d] cites unknown source number %d", i, side.SourceNumber),
				}
			}
			sides[j] = ContradictionSide{
				SourceID: citation.SourceID,
				Label:    citation.Label,
				Excerpt:  side.Excerpt,
			}
		}

		result = append(result, Contradiction{
			Type:           p.Type,
			Description:    p.Description,
			Sides:          sides,
			Severity:       severity,
			Recommendation: p.Recommendation,
		})
	}
	return result, nil
}
