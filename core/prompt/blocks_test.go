package prompt

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistriesConstruct(t *testing.T) {
	fragments, compositions, err := DefaultRegistries()
	require.NoError(t, err)
	assert.Equal(t, len(DefaultFragments()), fragments.Len())
	assert.Len(t, compositions.Contexts(), len(DefaultCompositions()))
}

// Every fragment id referenced by a production composition must resolve, so a
// renamed fragment cannot silently thin out a prompt.
func TestDefaultCompositionsReferenceKnownFragments(t *testing.T) {
	fragments, compositions, err := DefaultRegistries()
	require.NoError(t, err)

	for _, context := range compositions.Contexts() {
		comp, err := compositions.Get(context)
		require.NoError(t, err)
		require.NotEmpty(t, comp.FragmentIDs, context)

		for _, id := range comp.FragmentIDs {
			_, err := fragments.Get(id)
			assert.NoError(t, err, "composition %s references %s", context, id)
		}
	}
}

func TestDefaultTemplatesDeclareExpectedPlaceholders(t *testing.T) {
	_, compositions, err := DefaultRegistries()
	require.NoError(t, err)

	want := map[string][]string{
		ContextCreateGenerated:    {"sources"},
		ContextCreateFoundational: {"scope", "sources", "title"},
		ContextUpdateRegenerative: {"citations", "existing_content", "existing_title", "sources"},
		ContextUpdateAdditive:     {"citations", "existing_content", "existing_title", "new_sources", "scope"},
		ContextMatch:              {"candidates", "source"},
		ContextReformat:           {"citations", "existing_content", "existing_title", "sources"},
	}

	for context, expected := range want {
		comp, err := compositions.Get(context)
		require.NoError(t, err)

		got := TemplatePlaceholders(comp.UserTemplate)
		sort.Strings(got)
		assert.Equal(t, expected, got, context)
	}
}

func TestDefaultCompositionsAreStructured(t *testing.T) {
	_, compositions, err := DefaultRegistries()
	require.NoError(t, err)

	for _, context := range compositions.Contexts() {
		comp, err := compositions.Get(context)
		require.NoError(t, err)
		assert.Equal(t, OutputStructured, comp.OutputFormat, context)
		assert.NotEmpty(t, comp.SchemaHint, context)
	}
}
