package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	JobID  string    // only events for this job
}

// EventKind names what happened.
type EventKind string

const (
	EventAssessmentSaved   EventKind = "assessment_saved"
	EventResponseSubmitted EventKind = "response_submitted"
)

// Event is one entry of the activity log.
type Event struct {
	Sequence     int64
	Kind         EventKind
	JobID        string
	AssessmentID string
	CandidateID  string
	Detail       string
	Timestamp    time.Time
}

// EventRepo provides append and query access to the activity log.
type EventRepo interface {
	// Append records an event and assigns its sequence and timestamp.
	Append(ctx context.Context, ev Event) (Event, error)

	// Query returns events in sequence order.
	Query(ctx context.Context, opts QueryOpts) ([]Event, error)

	// Prune deletes all but the N most recent events.
	Prune(ctx context.Context, keep int) error
}

// ResponseFilter narrows a submission listing. Empty fields match all.
type ResponseFilter struct {
	JobID        string
	AssessmentID string
	CandidateID  string
	Limit        int
}
