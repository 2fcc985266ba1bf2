package synthesis

import (
	"fmt"
)

// PreconditionError indicates required inputs for an operation's mode are
// missing. It is raised before any model call is made.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition failed: %s", e.Op, e.Reason)
}

// GenerationOutputError indicates the model's response failed to parse or
// failed schema/scope validation. The partially built document is discarded;
// this layer performs no automatic retry.
type GenerationOutputError struct {
	Op     string
	Reason string
	Err    error
}

func (e *GenerationOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid model output: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: invalid model output: %s", e.Op, e.Reason)
}

func (e *GenerationOutputError) Unwrap() error {
	return e.Err
}

// CitationInvariantViolation indicates citation numbering broke one of its
// contracts. Numbering is assigned in this layer, never by the model, so a
// violation is an assertion failure pointing at a defect here or at corrupt
// prior state handed in by the caller.
type CitationInvariantViolation struct {
	Reason string
}

func (e *CitationInvariantViolation) Error() string {
	return fmt.Sprintf("citation invariant violated: %s", e.Reason)
}
