package synthesis

import (
	"fmt"

	"github.com/curatehq/skillforge/core/prompt"
)

// CreationMode selects how a new document is synthesized.
type CreationMode int

const (
	// CreationGenerated synthesizes a new document from all sources; the
	// model derives title and scope.
	CreationGenerated CreationMode = iota

	// CreationFoundational extracts only scope-filtered content; title and
	// scope are caller-supplied and immutable across updates.
	CreationFoundational
)

func (m CreationMode) String() string {
	switch m {
	case CreationGenerated:
		return "generated"
	case CreationFoundational:
		return "foundational"
	}
	return fmt.Sprintf("CreationMode(%d)", int(m))
}

// compositionContext maps a creation mode to its composition. The mapping is
// a fixed table; there is no blended mode.
func (m CreationMode) compositionContext() (string, error) {
	switch m {
	case CreationGenerated:
		return prompt.ContextCreateGenerated, nil
	case CreationFoundational:
		return prompt.ContextCreateFoundational, nil
	}
	return "", fmt.Errorf("unknown creation mode %d", int(m))
}

// ParseCreationMode converts a configuration string to a CreationMode.
func ParseCreationMode(s string) (CreationMode, error) {
	switch s {
	case "generated":
		return CreationGenerated, nil
	case "foundational":
		return CreationFoundational, nil
	}
	return 0, fmt.Errorf("unknown creation mode %q (want generated or foundational)", s)
}

// RefreshMode selects how an existing document is updated.
type RefreshMode int

const (
	// RefreshRegenerative reprocesses the full source set; output may
	// restructure anything.
	RefreshRegenerative RefreshMode = iota

	// RefreshAdditive processes only newly supplied sources; title and
	// scope are pinned and content is appended, not rewritten.
	RefreshAdditive
)

func (m RefreshMode) String() string {
	switch m {
	case RefreshRegenerative:
		return "regenerative"
	case RefreshAdditive:
		return "additive"
	}
	return fmt.Sprintf("RefreshMode(%d)", int(m))
}

// ParseRefreshMode converts a configuration string to a RefreshMode.
func ParseRefreshMode(s string) (RefreshMode, error) {
	switch s {
	case "regenerative":
		return RefreshRegenerative, nil
	case "additive":
		return RefreshAdditive, nil
	}
	return 0, fmt.Errorf("unknown refresh mode %q (want regenerative or additive)", s)
}

func (m RefreshMode) compositionContext() (string, error) {
	switch m {
	case RefreshRegenerative:
		return prompt.ContextUpdateRegenerative, nil
	case RefreshAdditive:
		return prompt.ContextUpdateAdditive, nil
	}
	return "", fmt.Errorf("unknown refresh mode %d", int(m))
}
