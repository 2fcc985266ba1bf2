package prompt

import (
	"context"
	"fmt"
	"log/slog"
)

// LibraryResolver resolves per-library guidance text. Implementations fall
// back to a static default internally, so resolution always yields text.
type LibraryResolver interface {
	Resolve(ctx context.Context, libraryID string) string
}

// Scoping narrows a built prompt to a library, a customer, or ad-hoc caller
// context. All fields are optional.
type Scoping struct {
	LibraryID         string
	CustomerScoped    bool
	AdditionalContext string
}

// BuiltPrompt is the assembled instruction payload for one request. It is
// created fresh per call and never cached: scoping varies per request.
type BuiltPrompt struct {
	SystemText      string
	UserTemplate    string
	CompositionID   string
	FragmentIDsUsed []string
	OutputFormat    OutputFormat
}

// Builder assembles prompts from the fragment and composition registries.
// It is stateless per call and safe for concurrent use.
type Builder struct {
	fragments    *FragmentRegistry
	compositions *CompositionRegistry
	libraries    LibraryResolver
	logger       *slog.Logger
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	Fragments    *FragmentRegistry
	Compositions *CompositionRegistry
	Libraries    LibraryResolver

	// Logger is optional, uses slog.Default() if nil.
	Logger *slog.Logger
}

// NewBuilder creates a prompt builder over explicit registries. Registries
// are passed in rather than looked up ambiently so tests can substitute
// fixture tables.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if cfg.Fragments == nil {
		return nil, fmt.Errorf("prompt builder: fragment registry is required")
	}
	if cfg.Compositions == nil {
		return nil, fmt.Errorf("prompt builder: composition registry is required")
	}
	if cfg.Libraries == nil {
		return nil, fmt.Errorf("prompt builder: library resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Builder{
		fragments:    cfg.Fragments,
		compositions: cfg.Compositions,
		libraries:    cfg.Libraries,
		logger:       cfg.Logger,
	}, nil
}

// Fixed section headers. Ordering is a hard contract: composition fragments,
// then schema, then library, then customer, then ad-hoc context, so the most
// specific guidance sits latest without displacing structural fragments.
const (
	schemaHeader     = "## Expected Output Schema"
	libraryHeader    = "## Library Context"
	customerHeader   = "## Customer Skill Context"
	additionalHeader = "## Additional Context"
)

// customerSkillContext is appended when a prompt is scoped to a single
// customer rather than the shared library.
const customerSkillContext = `This skill is scoped to a single customer. Treat every statement in the sources as specific to that customer's environment, configuration, and agreements. Do not generalize customer-specific details into universal claims, and do not omit details merely because they would not apply to other customers.`

// Build resolves a composition and assembles the system text. An unknown
// context fails with a ConfigurationError; a composition fragment id that
// fails to resolve is logged and skipped so synthesis is not blocked by a
// composition authored against a larger fragment set.
func (b *Builder) Build(ctx context.Context, taskContext string, scoping Scoping) (*BuiltPrompt, error) {
	comp, err := b.compositions.Get(taskContext)
	if err != nil {
		return nil, err
	}

	var blocks []string
	used := make([]string, 0, len(comp.FragmentIDs))

	for _, id := range comp.FragmentIDs {
		frag, err := b.fragments.Get(id)
		if err != nil {
			b.logger.Warn("composition references missing fragment, skipping",
				"context", taskContext,
				"fragment_id", id)
			continue
		}
		if frag.Content == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("## %s\n\n%s", frag.Name, frag.Content))
		used = append(used, id)
	}

	if comp.OutputFormat == OutputStructured && comp.SchemaHint != "" {
		blocks = append(blocks, fmt.Sprintf("%s\n\n%s", schemaHeader, comp.SchemaHint))
	}

	if scoping.LibraryID != "" {
		if guidance := b.libraries.Resolve(ctx, scoping.LibraryID); guidance != "" {
			blocks = append(blocks, fmt.Sprintf("%s\n\n%s", libraryHeader, guidance))
		}
	}

	if scoping.CustomerScoped {
		blocks = append(blocks, fmt.Sprintf("%s\n\n%s", customerHeader, customerSkillContext))
	}

	if scoping.AdditionalContext != "" {
		blocks = append(blocks, fmt.Sprintf("%s\n\n%s", additionalHeader, scoping.AdditionalContext))
	}

	return &BuiltPrompt{
		SystemText:      joinBlocks(blocks),
		UserTemplate:    comp.UserTemplate,
		CompositionID:   comp.Context,
		FragmentIDsUsed: used,
		OutputFormat:    comp.OutputFormat,
	}, nil
}
