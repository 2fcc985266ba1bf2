// Package library resolves per-library guidance text appended to prompts as
// the library context block.
package library

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// OverrideSource looks up dynamic, admin-edited guidance for a library. The
// boolean reports whether an override exists.
type OverrideSource interface {
	Lookup(ctx context.Context, libraryID string) (string, bool, error)
}

// Static per-library defaults used when no dynamic override exists. Unknown
// libraries fall back to genericContext.
var defaultContexts = map[string]string{
	"knowledge": `This skill belongs to the general knowledge library: durable how-it-works documentation for the whole team. Write for a reader with no prior exposure to the subject.`,
	"support":   `This skill belongs to the support library: troubleshooting and resolution playbooks. Lead with symptoms, then causes, then step-by-step resolution.`,
	"sales":     `This skill belongs to the sales library: positioning, pricing mechanics, and objection handling. Keep customer names out of the document body.`,
	"product":   `This skill belongs to the product library: feature behavior, limits, and configuration. State version or plan constraints explicitly wherever behavior differs.`,
}

const genericContext = `Write this skill for the team knowledge base. Favor durable facts over incident narration.`

// Resolver resolves library guidance, preferring a dynamic override and
// falling back to the static default for the library. Dynamic lookups are
// cached because overrides change rarely and the builder resolves once per
// request.
type Resolver struct {
	overrides OverrideSource
	cache     *lru.Cache[string, string]
	logger    *slog.Logger
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Overrides is optional; without it resolution is purely static.
	Overrides OverrideSource

	// CacheSize bounds the override cache. Defaults to 64.
	CacheSize int

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewResolver creates a library context resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cache, err := lru.New[string, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("library resolver: %w", err)
	}

	return &Resolver{
		overrides: cfg.Overrides,
		cache:     cache,
		logger:    cfg.Logger,
	}, nil
}

// Resolve returns the guidance text for a library. A failing override lookup
// is logged and falls through to the static default; resolution always
// yields text.
func (r *Resolver) Resolve(ctx context.Context, libraryID string) string {
	if r.overrides != nil {
		if cached, ok := r.cache.Get(libraryID); ok {
			return cached
		}

		text, found, err := r.overrides.Lookup(ctx, libraryID)
		if err != nil {
			r.logger.Warn("library override lookup failed, using static default",
				"library_id", libraryID,
				"error", err)
		} else if found && text != "" {
			r.cache.Add(libraryID, text)
			return text
		}
	}

	if text, ok := defaultContexts[libraryID]; ok {
		return text
	}
	return genericContext
}

// Invalidate drops a cached override, for callers that edit overrides in the
// same process.
func (r *Resolver) Invalidate(libraryID string) {
	r.cache.Remove(libraryID)
}
