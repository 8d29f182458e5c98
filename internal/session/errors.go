package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/talentflow/internal/validation"
)

var (
	// ErrSubmitted is returned by mutations after a successful submit.
	ErrSubmitted = errors.New("session: already submitted")

	// ErrSubmitting is returned by mutations while a submit is in flight.
	ErrSubmitting = errors.New("session: submit in progress")

	// ErrInvalid matches a ValidationError with errors.Is.
	ErrInvalid = errors.New("session: responses failed validation")

	// ErrUnknownQuestion is returned when answering a question the assessment
	// does not contain.
	ErrUnknownQuestion = errors.New("session: unknown question")
)

// ValidationError is returned by Submit when visible questions fail their
// rules. The session stays in the editing phase.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d question(s) failed validation", len(e.Violations))
	for _, id := range e.Violations.IDs() {
		fmt.Fprintf(&b, "\n  %s: %s", id, e.Violations[id].Message)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// TransportError wraps a failed hand-off to the submission transport. The
// draft is kept and the submit may be retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("submit failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
