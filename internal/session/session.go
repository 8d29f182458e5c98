// Package session runs one candidate's response to one assessment: answers
// are collected in memory, autosaved as a draft after a quiet period, and
// handed to the transport on submit.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/debounce"
	"github.com/abhisek/talentflow/internal/draft"
	"github.com/abhisek/talentflow/internal/validation"
	"github.com/abhisek/talentflow/internal/visibility"
)

// DefaultAutosaveDelay is the quiet period before a draft is written.
const DefaultAutosaveDelay = time.Second

// Phase is the lifecycle state of a session.
type Phase int

const (
	PhaseEditing    Phase = iota // Accepting answers
	PhaseSubmitting              // Waiting for the transport
	PhaseSubmitted               // Terminal
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// SubmitRequest is what the transport receives on submit.
type SubmitRequest struct {
	JobID        string
	AssessmentID string
	CandidateID  string
	Answers      assessment.Responses
}

// Transport delivers a completed response. A returned error means nothing
// was recorded.
type Transport interface {
	Submit(ctx context.Context, req SubmitRequest) (*assessment.Submission, error)
}

// Options configures a Session.
type Options struct {
	Assessment  *assessment.Assessment
	CandidateID string
	Drafts      draft.Store
	Transport   Transport

	// AutosaveDelay defaults to DefaultAutosaveDelay when zero.
	AutosaveDelay time.Duration

	// Clock defaults to the wall clock.
	Clock debounce.Clock

	// Logger defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// Session owns the response map for one (assessment, candidate) pair.
type Session struct {
	a         *assessment.Assessment
	candidate string
	key       string
	drafts    draft.Store
	transport Transport
	log       logrus.FieldLogger
	autosave  *debounce.Debouncer

	mu         sync.Mutex
	phase      Phase
	responses  assessment.Responses
	violations validation.Violations
	submission *assessment.Submission
	resumed    bool
}

// New creates a session and resumes any draft saved for the same
// assessment and candidate. A draft that cannot be read is logged and the
// session starts empty.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Assessment == nil {
		return nil, errors.New("session: assessment is required")
	}
	if opts.CandidateID == "" {
		return nil, errors.New("session: candidate id is required")
	}
	if opts.Drafts == nil {
		return nil, errors.New("session: draft store is required")
	}
	if opts.Transport == nil {
		return nil, errors.New("session: transport is required")
	}

	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	key := draft.ResponseKey(opts.Assessment.ID, opts.CandidateID)
	s := &Session{
		a:          opts.Assessment,
		candidate:  opts.CandidateID,
		key:        key,
		drafts:     opts.Drafts,
		transport:  opts.Transport,
		autosave:   debounce.New(delay, opts.Clock),
		phase:      PhaseEditing,
		responses:  make(assessment.Responses),
		violations: make(validation.Violations),
		log: logger.WithFields(logrus.Fields{
			"assessment_id": opts.Assessment.ID,
			"candidate_id":  opts.CandidateID,
			"draft_key":     key,
		}),
	}
	s.resume(ctx)
	return s, nil
}

func (s *Session) resume(ctx context.Context) {
	var saved assessment.Responses
	ok, err := draft.Load(ctx, s.drafts, s.key, &saved)
	if err != nil {
		s.log.WithError(err).Warn("Could not resume response draft")
		return
	}
	if !ok {
		return
	}
	if saved != nil {
		s.responses = saved
	}
	s.resumed = true
	s.log.WithField("answers", len(saved)).Debug("Resumed response draft")
}

// Set records the answer to a question. Any violation recorded for that
// question is cleared and an autosave is scheduled.
func (s *Session) Set(questionID string, ans assessment.Answer) error {
	return s.mutate(questionID, func(r assessment.Responses) {
		r[questionID] = ans
	})
}

// Clear removes the answer to a question, leaving it unanswered.
func (s *Session) Clear(questionID string) error {
	return s.mutate(questionID, func(r assessment.Responses) {
		delete(r, questionID)
	})
}

func (s *Session) mutate(questionID string, apply func(assessment.Responses)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseSubmitting:
		return ErrSubmitting
	case PhaseSubmitted:
		return ErrSubmitted
	}
	if _, ok := s.a.Question(questionID); !ok {
		return ErrUnknownQuestion
	}

	apply(s.responses)
	delete(s.violations, questionID)

	snapshot := s.responses.Clone()
	s.autosave.Trigger(func() { s.persist(snapshot) })
	return nil
}

// persist writes a response snapshot. Failures are logged only; the
// session keeps working from memory.
func (s *Session) persist(snapshot assessment.Responses) {
	if err := draft.Save(context.Background(), s.drafts, s.key, snapshot); err != nil {
		s.log.WithError(err).Warn("Could not autosave response draft")
		return
	}
	s.log.WithField("answers", len(snapshot)).Debug("Autosaved response draft")
}

// Validate runs the full-form check and records the violations for display.
func (s *Session) Validate() validation.Violations {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations = validation.ValidateForm(s.a, s.responses)
	return s.violations.Clone()
}

// Submit validates the visible questions and hands the responses to the
// transport. A pending autosave is written first so that a transport
// failure leaves the latest draft in place. Only a confirmed submission
// removes the draft.
func (s *Session) Submit(ctx context.Context) (*assessment.Submission, error) {
	s.mu.Lock()
	switch s.phase {
	case PhaseSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmitting
	case PhaseSubmitted:
		s.mu.Unlock()
		return nil, ErrSubmitted
	}

	vs := validation.ValidateForm(s.a, s.responses)
	s.violations = vs
	if !vs.Valid() {
		s.mu.Unlock()
		s.log.WithField("violations", len(vs)).Info("Submit refused: validation failed")
		return nil, &ValidationError{Violations: vs.Clone()}
	}

	s.phase = PhaseSubmitting
	req := SubmitRequest{
		JobID:        s.a.JobID,
		AssessmentID: s.a.ID,
		CandidateID:  s.candidate,
		Answers:      s.responses.Clone(),
	}
	s.mu.Unlock()

	s.autosave.Flush()

	sub, err := s.transport.Submit(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.phase = PhaseEditing
		s.mu.Unlock()
		s.log.WithError(err).Warn("Submit failed; draft kept")
		return nil, &TransportError{Err: err}
	}

	s.mu.Lock()
	s.phase = PhaseSubmitted
	s.submission = sub
	s.mu.Unlock()

	s.autosave.Cancel()
	if err := s.drafts.Remove(ctx, s.key); err != nil {
		s.log.WithError(err).Warn("Could not remove response draft after submit")
	}
	s.log.Info("Assessment submitted")
	return sub, nil
}

// Flush writes a pending autosave immediately.
func (s *Session) Flush() {
	s.autosave.Flush()
}

// Close drops a pending autosave without writing it.
func (s *Session) Close() {
	if s.autosave.Cancel() {
		s.log.Debug("Discarded pending autosave")
	}
}

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Resumed reports whether the session started from a saved draft.
func (s *Session) Resumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumed
}

// Assessment returns the assessment being answered.
func (s *Session) Assessment() *assessment.Assessment { return s.a }

// DraftKey returns the key the session autosaves under.
func (s *Session) DraftKey() string { return s.key }

// Answer returns the answer to a question.
func (s *Session) Answer(questionID string) (assessment.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.responses[questionID]
	return a, ok
}

// Answers returns a copy of the response map.
func (s *Session) Answers() assessment.Responses {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses.Clone()
}

// Violations returns a copy of the recorded violations.
func (s *Session) Violations() validation.Violations {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.violations.Clone()
}

// Visible returns the questions currently presented, in order.
func (s *Session) Visible() []assessment.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return visibility.Visible(s.a, s.responses)
}

// Progress returns how many visible questions are answered out of the
// visible total.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range visibility.Visible(s.a, s.responses) {
		total++
		if !s.responses[q.ID].IsEmpty() {
			answered++
		}
	}
	return answered, total
}

// Submission returns the confirmed submission, or nil before a successful
// submit.
func (s *Session) Submission() *assessment.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}
