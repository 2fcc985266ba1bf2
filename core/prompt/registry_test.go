package prompt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFragments() []Fragment {
	return []Fragment{
		{ID: "role", Name: "Role", Tier: TierCore, Content: "You are a curator."},
		{ID: "style", Name: "Style", Tier: TierOpen, Content: "Write plainly."},
		{ID: "empty", Name: "Empty", Tier: TierOpen, Content: ""},
	}
}

func TestNewFragmentRegistryRejectsEmptySet(t *testing.T) {
	_, err := NewFragmentRegistry(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyRegistry))
}

func TestNewFragmentRegistryRejectsDuplicateIDs(t *testing.T) {
	_, err := NewFragmentRegistry([]Fragment{
		{ID: "role", Name: "Role", Tier: TierCore, Content: "a"},
		{ID: "role", Name: "Role Again", Tier: TierCore, Content: "b"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestFragmentRegistryGet(t *testing.T) {
	registry, err := NewFragmentRegistry(testFragments())
	require.NoError(t, err)

	frag, err := registry.Get("role")
	require.NoError(t, err)
	assert.Equal(t, "Role", frag.Name)

	_, err = registry.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFragmentNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestFragmentRegistryGetManyOmitsUnknownIDs(t *testing.T) {
	registry, err := NewFragmentRegistry(testFragments())
	require.NoError(t, err)

	got := registry.GetMany([]string{"style", "missing", "role"})
	require.Len(t, got, 2)
	assert.Equal(t, "style", got[0].ID)
	assert.Equal(t, "role", got[1].ID)
}

func TestFragmentRegistryTokenEstimate(t *testing.T) {
	registry, err := NewFragmentRegistry([]Fragment{
		{ID: "a", Name: "A", Tier: TierCore, Content: "abcdefgh"},  // 8 bytes
		{ID: "b", Name: "B", Tier: TierCore, Content: "abcdefghi"}, // 9 bytes
		{ID: "c", Name: "C", Tier: TierCore, Content: "ééé"},       // 6 bytes
	})
	require.NoError(t, err)

	est, err := registry.TokenEstimate("a")
	require.NoError(t, err)
	assert.Equal(t, 2, est)

	// Partial chunks round up.
	est, err = registry.TokenEstimate("b")
	require.NoError(t, err)
	assert.Equal(t, 3, est)

	// Bytes, not runes, to agree with the provider-side counter.
	est, err = registry.TokenEstimate("c")
	require.NoError(t, err)
	assert.Equal(t, 2, est)

	// Memoized value is stable across calls.
	again, err := registry.TokenEstimate("a")
	require.NoError(t, err)
	assert.Equal(t, 2, again)

	_, err = registry.TokenEstimate("missing")
	assert.True(t, errors.Is(err, ErrFragmentNotFound))
}

func TestFragmentRegistryIDsSorted(t *testing.T) {
	registry, err := NewFragmentRegistry(testFragments())
	require.NoError(t, err)

	assert.Equal(t, []string{"empty", "role", "style"}, registry.IDs())
	assert.Equal(t, 3, registry.Len())
}

func TestCompositionRegistryUnknownContext(t *testing.T) {
	registry, err := NewCompositionRegistry([]Composition{
		{Context: "skill.create.generated", FragmentIDs: []string{"role"}, OutputFormat: OutputStructured},
		{Context: "skill.match", FragmentIDs: []string{"role"}, OutputFormat: OutputStructured},
	})
	require.NoError(t, err)

	_, err = registry.Get("skill.create.genarated")
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "skill.create.genarated", cfgErr.Context)
	assert.Equal(t, []string{"skill.create.generated", "skill.match"}, cfgErr.Known)
}

func TestCompositionRegistryRejectsInvalidOutputFormat(t *testing.T) {
	_, err := NewCompositionRegistry([]Composition{
		{Context: "skill.match", FragmentIDs: []string{"role"}, OutputFormat: "yaml"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
