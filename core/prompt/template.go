package prompt

import (
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// FillTemplate substitutes {{name}} placeholders in a user template. A
// placeholder with no supplied value fails with a TemplateError rather than
// passing the raw marker through to the model, catching drift between a
// composition's declared inputs and what the caller supplies.
func FillTemplate(template string, vars map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)

	filled := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return match
		}
		return value
	})

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &TemplateError{Missing: missing}
	}
	return filled, nil
}

// TemplatePlaceholders returns the distinct placeholder names in a template,
// in order of first appearance.
func TemplatePlaceholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}

// joinBlocks joins non-empty header-delimited blocks with blank lines.
func joinBlocks(blocks []string) string {
	nonEmpty := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(b))
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
