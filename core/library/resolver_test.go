package library

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOverrides struct {
	overrides map[string]string
	err       error
	lookups   int
}

func (c *countingOverrides) Lookup(_ context.Context, libraryID string) (string, bool, error) {
	c.lookups++
	if c.err != nil {
		return "", false, c.err
	}
	text, ok := c.overrides[libraryID]
	return text, ok, nil
}

func TestResolveStaticDefaults(t *testing.T) {
	resolver, err := NewResolver(ResolverConfig{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	assert.Contains(t, resolver.Resolve(context.Background(), "support"), "support library")
	assert.Contains(t, resolver.Resolve(context.Background(), "sales"), "sales library")

	// Unknown libraries fall back to the generic context.
	assert.Equal(t, genericContext, resolver.Resolve(context.Background(), "unheard-of"))
}

func TestResolvePrefersOverride(t *testing.T) {
	overrides := &countingOverrides{overrides: map[string]string{
		"support": "Custom support guidance.",
	}}
	resolver, err := NewResolver(ResolverConfig{
		Overrides: overrides,
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	assert.Equal(t, "Custom support guidance.", resolver.Resolve(context.Background(), "support"))

	// A library without an override still resolves statically.
	assert.Equal(t, defaultContexts["sales"], resolver.Resolve(context.Background(), "sales"))
}

func TestResolveCachesOverrideLookups(t *testing.T) {
	overrides := &countingOverrides{overrides: map[string]string{
		"support": "Custom support guidance.",
	}}
	resolver, err := NewResolver(ResolverConfig{
		Overrides: overrides,
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	resolver.Resolve(context.Background(), "support")
	resolver.Resolve(context.Background(), "support")
	assert.Equal(t, 1, overrides.lookups)

	resolver.Invalidate("support")
	resolver.Resolve(context.Background(), "support")
	assert.Equal(t, 2, overrides.lookups)
}

func TestResolveOverrideErrorFallsThrough(t *testing.T) {
	overrides := &countingOverrides{err: errors.New("backend down")}
	resolver, err := NewResolver(ResolverConfig{
		Overrides: overrides,
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	assert.Equal(t, defaultContexts["knowledge"], resolver.Resolve(context.Background(), "knowledge"))
}

func TestStaticOverrides(t *testing.T) {
	source := StaticOverrides{"product": "Product override."}

	text, ok, err := source.Lookup(context.Background(), "product")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Product override.", text)

	_, ok, err = source.Lookup(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
