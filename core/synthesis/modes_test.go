package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curatehq/skillforge/core/prompt"
)

func TestCreationModeRoundTrip(t *testing.T) {
	for _, mode := range []CreationMode{CreationGenerated, CreationFoundational} {
		parsed, err := ParseCreationMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseCreationMode("blended")
	assert.Error(t, err)
}

func TestRefreshModeRoundTrip(t *testing.T) {
	for _, mode := range []RefreshMode{RefreshRegenerative, RefreshAdditive} {
		parsed, err := ParseRefreshMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseRefreshMode("incremental")
	assert.Error(t, err)
}

func TestModeCompositionContexts(t *testing.T) {
	ctx, err := CreationGenerated.compositionContext()
	require.NoError(t, err)
	assert.Equal(t, prompt.ContextCreateGenerated, ctx)

	ctx, err = CreationFoundational.compositionContext()
	require.NoError(t, err)
	assert.Equal(t, prompt.ContextCreateFoundational, ctx)

	ctx, err = RefreshRegenerative.compositionContext()
	require.NoError(t, err)
	assert.Equal(t, prompt.ContextUpdateRegenerative, ctx)

	ctx, err = RefreshAdditive.compositionContext()
	require.NoError(t, err)
	assert.Equal(t, prompt.ContextUpdateAdditive, ctx)

	_, err = CreationMode(42).compositionContext()
	assert.Error(t, err)
	_, err = RefreshMode(42).compositionContext()
	assert.Error(t, err)
}
