package synthesis

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// citationMarkerPattern matches inline numeric citation markers like [3].
var citationMarkerPattern = regexp.MustCompile(`\[(\d+)\]`)

// maxCitationNumber returns the highest numeric id in use, or zero.
func maxCitationNumber(citations []Citation) int {
	max := 0
	for _, c := range citations {
		if c.NumericID > max {
			max = c.NumericID
		}
	}
	return max
}

// citationsForSources numbers sources 1..n in supplied order. Used by the
// create operations, where no prior numbering exists.
func citationsForSources(sources []Source) []Citation {
	citations := make([]Citation, 0, len(sources))
	for i, s := range sources {
		citations = append(citations, Citation{
			NumericID: i + 1,
			SourceID:  s.ID,
			Label:     s.Label,
			URL:       s.URL,
		})
	}
	return citations
}

// appendCitations extends an existing citation list with new sources, each
// receiving the next unused integer above the current maximum. Numbers are
// never reused and never inserted out of sequence. A new source whose id is
// already cited keeps its existing citation.
func appendCitations(existing []Citation, newSources []Source) []Citation {
	cited := make(map[string]bool, len(existing))
	for _, c := range existing {
		cited[c.SourceID] = true
	}

	citations := make([]Citation, len(existing))
	copy(citations, existing)

	next := maxCitationNumber(existing) + 1
	for _, s := range newSources {
		if cited[s.ID] {
			continue
		}
		cited[s.ID] = true
		citations = append(citations, Citation{
			NumericID: next,
			SourceID:  s.ID,
			Label:     s.Label,
			URL:       s.URL,
		})
		next++
	}
	return citations
}

// mergeCitations builds the citation list for a regenerative update: every
// source in the complete set keeps its existing number if it was already
// cited, and otherwise receives the next unused integer above the prior
// document's maximum. Citations for sources no longer in the set are dropped;
// their numbers are never reused.
func mergeCitations(existing []Citation, allSources []Source) []Citation {
	bysource := make(map[string]Citation, len(existing))
	for _, c := range existing {
		bysource[c.SourceID] = c
	}

	var surviving []Citation
	var fresh []Citation
	next := maxCitationNumber(existing) + 1

	for _, s := range allSources {
		if c, ok := bysource[s.ID]; ok {
			surviving = append(surviving, c)
			continue
		}
		fresh = append(fresh, Citation{
			NumericID: next,
			SourceID:  s.ID,
			Label:     s.Label,
			URL:       s.URL,
		})
		next++
	}

	sort.Slice(surviving, func(i, j int) bool {
		return surviving[i].NumericID < surviving[j].NumericID
	})
	return append(surviving, fresh...)
}

// numberingFor maps source id to assigned citation number.
func numberingFor(citations []Citation) map[string]int {
	numbering := make(map[string]int, len(citations))
	for _, c := range citations {
		numbering[c.SourceID] = c.NumericID
	}
	return numbering
}

// verifyUniqueNumbers defensively checks for duplicate numeric ids, a state
// that should be unreachable but is not trusted from caller-supplied prior
// documents.
func verifyUniqueNumbers(citations []Citation) error {
	seen := make(map[int]string, len(citations))
	for _, c := range citations {
		if prior, dup := seen[c.NumericID]; dup {
			return &CitationInvariantViolation{
				Reason: fmt.Sprintf("numeric id %d assigned to both source %q and source %q",
					c.NumericID, prior, c.SourceID),
			}
		}
		seen[c.NumericID] = c.SourceID
	}
	return nil
}

// verifyPreserved asserts that every prior citation whose source is still
// cited kept its number. Update operations run this before returning.
func verifyPreserved(prior, current []Citation) error {
	currentNumbers := numberingFor(current)
	for _, c := range prior {
		n, stillCited := currentNumbers[c.SourceID]
		if stillCited && n != c.NumericID {
			return &CitationInvariantViolation{
				Reason: fmt.Sprintf("source %q was renumbered from %d to %d outside reformat",
					c.SourceID, c.NumericID, n),
			}
		}
	}
	return nil
}

// renumberByAppearance renumbers every citation by first-appearance order of
// its marker in the content, rewrites the markers, and returns the new
// content and citation list. Citations whose markers do not appear are
// appended after the appearing ones, in prior-number order, so none is left
// stale. Only reformat may call this. A marker referencing a number with no
// citation is a model output defect, reported to the caller for wrapping.
func renumberByAppearance(content string, citations []Citation) (string, []Citation, error) {
	byNumber := make(map[int]Citation, len(citations))
	for _, c := range citations {
		byNumber[c.NumericID] = c
	}

	oldToNew := make(map[int]int, len(citations))
	next := 1
	var scanErr error

	for _, match := range citationMarkerPattern.FindAllStringSubmatch(content, -1) {
		old, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if _, known := byNumber[old]; !known {
			scanErr = fmt.Errorf("content cites [%d] but no such citation exists", old)
			break
		}
		if _, assigned := oldToNew[old]; !assigned {
			oldToNew[old] = next
			next++
		}
	}
	if scanErr != nil {
		return "", nil, scanErr
	}

	// Citations never cited in the regenerated content keep a slot past the
	// appearing ones rather than going stale.
	leftover := make([]int, 0)
	for _, c := range citations {
		if _, assigned := oldToNew[c.NumericID]; !assigned {
			leftover = append(leftover, c.NumericID)
		}
	}
	sort.Ints(leftover)
	for _, old := range leftover {
		oldToNew[old] = next
		next++
	}

	renumbered := citationMarkerPattern.ReplaceAllStringFunc(content, func(marker string) string {
		old, err := strconv.Atoi(citationMarkerPattern.FindStringSubmatch(marker)[1])
		if err != nil {
			return marker
		}
		return fmt.Sprintf("[%d]", oldToNew[old])
	})

	updated := make([]Citation, 0, len(citations))
	for _, c := range citations {
		c.NumericID = oldToNew[c.NumericID]
		updated = append(updated, c)
	}
	sort.Slice(updated, func(i, j int) bool {
		return updated[i].NumericID < updated[j].NumericID
	})

	return renumbered, updated, nil
}
