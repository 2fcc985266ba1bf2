package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFragmentNotFound = errors.New("fragment not found")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrEmptyRegistry    = errors.New("registry has no entries")
)

// ConfigurationError indicates a request for a composition context that does
// not exist. An unknown context is always a caller or deploy defect, never a
// recoverable runtime condition, so there is no fallback composition.
type ConfigurationError struct {
	Context string
	Known   []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown composition context %q (known contexts: %s)",
		e.Context, strings.Join(e.Known, ", "))
}

// TemplateError indicates a user template with placeholders the caller did
// not supply values for.
type TemplateError struct {
	Missing []string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template has unresolved placeholders: %s", strings.Join(e.Missing, ", "))
}
