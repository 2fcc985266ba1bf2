package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillTemplate(t *testing.T) {
	filled, err := FillTemplate("Title: {{title}}\n\n{{sources}}", map[string]string{
		"title":   "Key Rotation",
		"sources": "### Source [1]",
	})
	require.NoError(t, err)
	assert.Equal(t, "Title: Key Rotation\n\n### Source [1]", filled)
}

func TestFillTemplateMissingPlaceholders(t *testing.T) {
	_, err := FillTemplate("{{sources}} {{title}} {{sources}}", map[string]string{
		"extra": "unused values are fine",
	})
	require.Error(t, err)

	var tmplErr *TemplateError
	require.True(t, errors.As(err, &tmplErr))
	// Missing names are distinct and sorted.
	assert.Equal(t, []string{"sources", "title"}, tmplErr.Missing)
}

func TestFillTemplateNoPlaceholders(t *testing.T) {
	filled, err := FillTemplate("static text", nil)
	require.NoError(t, err)
	assert.Equal(t, "static text", filled)
}

func TestTemplatePlaceholders(t *testing.T) {
	names := TemplatePlaceholders("{{b}} then {{a}} then {{b}} again")
	assert.Equal(t, []string{"b", "a"}, names)

	assert.Empty(t, TemplatePlaceholders("no markers here"))
}
