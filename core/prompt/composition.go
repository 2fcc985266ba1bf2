package prompt

import (
	"fmt"
	"sort"
)

// OutputFormat declares the shape a composition expects the model to produce.
type OutputFormat string

const (
	OutputStructured OutputFormat = "structured"
	OutputProse      OutputFormat = "prose"
)

// Composition maps one task context to an ordered recipe of fragments plus
// the expected output shape.
type Composition struct {
	// Context is the unique task key, e.g. "skill.create.generated".
	Context string

	// FragmentIDs are assembled in order. Every id should resolve in the
	// fragment registry; ids that do not are logged and skipped at build
	// time so a composition authored against a larger fragment set degrades
	// gracefully.
	FragmentIDs []string

	OutputFormat OutputFormat

	// SchemaHint, when present on a structured composition, is appended
	// verbatim as the expected output schema block.
	SchemaHint string

	// UserTemplate is the unfilled user-message template with {{name}}
	// placeholders.
	UserTemplate string
}

// CompositionRegistry is an immutable keyed store of compositions, populated
// once at process start and safe for unsynchronized concurrent reads.
type CompositionRegistry struct {
	compositions map[string]Composition
	contexts     []string
}

// NewCompositionRegistry builds a registry from the given compositions.
// Duplicate context keys are a construction error.
func NewCompositionRegistry(compositions []Composition) (*CompositionRegistry, error) {
	if len(compositions) == 0 {
		return nil, fmt.Errorf("composition registry: %w", ErrEmptyRegistry)
	}

	byContext := make(map[string]Composition, len(compositions))
	for _, c := range compositions {
		if c.Context == "" {
			return nil, fmt.Errorf("composition registry: composition with empty context")
		}
		if _, exists := byContext[c.Context]; exists {
			return nil, fmt.Errorf("composition registry: %w: %s", ErrDuplicateID, c.Context)
		}
		if c.OutputFormat != OutputStructured && c.OutputFormat != OutputProse {
			return nil, fmt.Errorf("composition registry: %s: invalid output format %q", c.Context, c.OutputFormat)
		}
		byContext[c.Context] = c
	}

	contexts := make([]string, 0, len(byContext))
	for key := range byContext {
		contexts = append(contexts, key)
	}
	sort.Strings(contexts)

	return &CompositionRegistry{
		compositions: byContext,
		contexts:     contexts,
	}, nil
}

// Get returns the composition for a task context. An unknown context is a
// configuration defect and fails with the full set of known keys so the
// mismatch is diagnosable from the error alone.
func (r *CompositionRegistry) Get(context string) (Composition, error) {
	c, ok := r.compositions[context]
	if !ok {
		return Composition{}, &ConfigurationError{Context: context, Known: r.contexts}
	}
	return c, nil
}

// Contexts returns all known context keys in sorted order.
func (r *CompositionRegistry) Contexts() []string {
	return r.contexts
}
