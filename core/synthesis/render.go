package synthesis

import (
	"fmt"
	"strings"
)

// Source-size ceilings in characters. Anything over the ceiling is truncated
// with a visible marker before entering the user message; truncation is
// never silent.
const (
	// CreateSourceCeiling bounds each source's content during creation and
	// for new sources in updates.
	CreateSourceCeiling = 8000

	// ExistingContentCeiling bounds existing document content reused in
	// update and reformat messages.
	ExistingContentCeiling = 12000
)

// TruncationMarker is appended verbatim whenever content is cut at a ceiling.
const TruncationMarker = "\n\n[TRUNCATED: content exceeds the size limit]"

// truncate cuts content at the ceiling and appends the marker. Content at or
// under the ceiling passes through untouched.
func truncate(content string, ceiling int) string {
	runes := []rune(content)
	if len(runes) <= ceiling {
		return content
	}
	return string(runes[:ceiling]) + TruncationMarker
}

// renderSources formats sources for the user message under their assigned
// citation numbers. Sources without an assigned number are omitted; the
// orchestrator always numbers before rendering.
func renderSources(sources []Source, numbering map[string]int, ceiling int) string {
	blocks := make([]string, 0, len(sources))
	for _, s := range sources {
		n, ok := numbering[s.ID]
		if !ok {
			continue
		}
		blocks = append(blocks, renderSource(s, n, ceiling))
	}
	return strings.Join(blocks, "\n\n")
}

func renderSource(s Source, number int, ceiling int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Source [%d]: %s\n", number, s.Label)
	fmt.Fprintf(&b, "Type: %s\n", s.Type)
	if s.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", s.URL)
	}
	b.WriteString("\n")
	b.WriteString(truncate(s.Content, ceiling))
	return b.String()
}

// renderUnnumberedSource formats a single source for the match operation,
// which has no citation numbering.
func renderUnnumberedSource(s Source, ceiling int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Label: %s\n", s.Label)
	fmt.Fprintf(&b, "Type: %s\n", s.Type)
	if s.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", s.URL)
	}
	b.WriteString("\n")
	b.WriteString(truncate(s.Content, ceiling))
	return b.String()
}

// renderScope formats a scope definition for the user message.
func renderScope(scope ScopeDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Covers: %s\n", scope.Covers)
	b.WriteString("Future additions:\n")
	for _, item := range scope.FutureAdditions {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("Not included:\n")
	for _, item := range scope.NotIncluded {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderCitations formats the existing citation list for the user message.
func renderCitations(citations []Citation) string {
	if len(citations) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(citations))
	for _, c := range citations {
		line := fmt.Sprintf("[%d] %s", c.NumericID, c.Label)
		if c.URL != "" {
			line += " (" + c.URL + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderCandidates formats candidate skills for the match user message.
func renderCandidates(candidates []SkillCandidate) string {
	if len(candidates) == 0 {
		return "(no candidates)"
	}
	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		var b strings.Builder
		fmt.Fprintf(&b, "- id: %s\n", c.ID)
		fmt.Fprintf(&b, "  title: %s\n", c.Title)
		if c.Summary != "" {
			fmt.Fprintf(&b, "  summary: %s\n", c.Summary)
		}
		if c.Covers != "" {
			fmt.Fprintf(&b, "  covers: %s\n", c.Covers)
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(blocks, "\n")
}
