package builder

import (
	"errors"
	"fmt"
)

// Reasons a mutation is refused. They are wrapped in a *RejectionError.
var (
	ErrNotFound          = errors.New("not found")
	ErrLastSection       = errors.New("an assessment needs at least one section")
	ErrTooFewOptions     = errors.New("a choice question needs at least two options")
	ErrSelfDependency    = errors.New("a question cannot depend on itself")
	ErrUnknownDependency = errors.New("dependency does not exist")
	ErrUnknownOperator   = errors.New("unknown condition operator")
	ErrUnknownType       = errors.New("unknown question type")
	ErrNotChoice         = errors.New("question has no options")
	ErrInvalidRule       = errors.New("invalid validation rule")
	ErrOutOfRange        = errors.New("position out of range")
	ErrEmptyTitle        = errors.New("title is required")
)

// RejectionError reports a mutation that was refused. The assessment is left
// unchanged.
type RejectionError struct {
	Op     string
	Reason error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s refused: %v", e.Op, e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.Reason }

// SaveError wraps a failed save to the assessment store. The draft is kept.
type SaveError struct {
	JobID string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save assessment for job %s: %v", e.JobID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
