package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/debounce"
	"github.com/abhisek/talentflow/internal/draft"
	"github.com/abhisek/talentflow/internal/validation"
)

type fakeTransport struct {
	err      error
	requests []SubmitRequest
}

func (f *fakeTransport) Submit(_ context.Context, req SubmitRequest) (*assessment.Submission, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &assessment.Submission{
		ID:           "sub-1",
		JobID:        req.JobID,
		AssessmentID: req.AssessmentID,
		CandidateID:  req.CandidateID,
		Answers:      req.Answers,
		Status:       assessment.StatusSubmitted,
	}, nil
}

// testAssessment has a required choice question q1, a required text
// question q2 shown only when q1 is "yes", and an optional numeric q3.
func testAssessment() *assessment.Assessment {
	return &assessment.Assessment{
		ID:    "a1",
		JobID: "job-1",
		Title: "Screening",
		Sections: []assessment.Section{{
			ID:    "s1",
			Order: 1,
			Questions: []assessment.Question{
				{ID: "q1", Type: assessment.TypeSingleChoice, Title: "Relocate?", Required: true, Order: 1,
					Options: []assessment.Option{
						assessment.NewOption("o1", "Yes", 1),
						assessment.NewOption("o2", "No", 2),
					}},
				{ID: "q2", Type: assessment.TypeShortText, Title: "Where to?", Required: true, Order: 2,
					ConditionalLogic: &assessment.ConditionalLogic{DependsOn: "q1", Condition: assessment.OpEquals, Value: "yes"}},
				{ID: "q3", Type: assessment.TypeNumeric, Title: "Years?", Order: 3,
					Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(0), Max: assessment.FloatPtr(50)}},
			},
		}},
	}
}

type harness struct {
	clock     *debounce.FakeClock
	drafts    *draft.MemoryStore
	transport *fakeTransport
}

func newHarness() *harness {
	return &harness{
		clock:     debounce.NewFakeClock(),
		drafts:    draft.NewMemoryStore(),
		transport: &fakeTransport{},
	}
}

func (h *harness) open(t *testing.T) *Session {
	t.Helper()
	s, err := New(context.Background(), Options{
		Assessment:  testAssessment(),
		CandidateID: "c1",
		Drafts:      h.drafts,
		Transport:   h.transport,
		Clock:       h.clock,
	})
	require.NoError(t, err)
	return s
}

func (h *harness) saved(t *testing.T) assessment.Responses {
	t.Helper()
	var r assessment.Responses
	ok, err := draft.Load(context.Background(), h.drafts, draft.ResponseKey("a1", "c1"), &r)
	require.NoError(t, err)
	require.True(t, ok, "no draft saved")
	return r
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(context.Background(), Options{CandidateID: "c1"})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Assessment: testAssessment(), CandidateID: "c1"})
	assert.Error(t, err)
}

func TestAutosave_CoalescesBurst(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	for _, v := range []string{"B", "Be", "Ber", "Berl", "Berlin"} {
		require.NoError(t, s.Set("q2", assessment.Text(v)))
		h.clock.Advance(200 * time.Millisecond)
	}
	assert.Equal(t, 0, h.drafts.Writes(), "wrote during burst")

	h.clock.Advance(time.Second)
	assert.Equal(t, 1, h.drafts.Writes())
	assert.Equal(t, "Berlin", h.saved(t)["q2"].Text)
}

func TestAutosave_ResumeRoundTrip(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	require.NoError(t, s.Set("q1", assessment.Choice("yes")))
	require.NoError(t, s.Set("q2", assessment.Text("Lisbon")))
	require.NoError(t, s.Set("q3", assessment.Number("4.5")))
	h.clock.Advance(DefaultAutosaveDelay)
	want := s.Answers()
	s.Close()

	resumed := h.open(t)
	assert.True(t, resumed.Resumed())
	assert.Equal(t, want, resumed.Answers())
}

func TestAutosave_ResumeRoundTripMultiAndFile(t *testing.T) {
	a := &assessment.Assessment{
		ID:    "a1",
		JobID: "job-1",
		Title: "Profile",
		Sections: []assessment.Section{{
			ID:    "s1",
			Order: 1,
			Questions: []assessment.Question{
				{ID: "tech", Type: assessment.TypeMultipleChoice, Title: "Stack?", Order: 1,
					Options: []assessment.Option{
						assessment.NewOption("o1", "Go", 1),
						assessment.NewOption("o2", "AWS", 2),
					}},
				{ID: "langs", Type: assessment.TypeMultipleChoice, Title: "Languages?", Order: 2,
					Options: []assessment.Option{
						assessment.NewOption("o3", "English", 1),
						assessment.NewOption("o4", "German", 2),
					}},
				{ID: "cv", Type: assessment.TypeFileUpload, Title: "Resume", Order: 3},
			},
		}},
	}
	h := newHarness()
	open := func() *Session {
		s, err := New(context.Background(), Options{
			Assessment:  a,
			CandidateID: "c1",
			Drafts:      h.drafts,
			Transport:   h.transport,
			Clock:       h.clock,
		})
		require.NoError(t, err)
		return s
	}

	s := open()
	require.NoError(t, s.Set("tech", assessment.Multi("go").Toggle("aws")))
	// Toggled on and off again leaves an empty selection.
	require.NoError(t, s.Set("langs", assessment.Multi("english").Toggle("english")))
	require.NoError(t, s.Set("cv", assessment.File(assessment.FileRef{Name: "resume.pdf", Size: 48213, Type: "application/pdf"})))
	h.clock.Advance(DefaultAutosaveDelay)
	want := s.Answers()
	s.Close()

	resumed := open()
	require.True(t, resumed.Resumed())
	assert.Equal(t, want, resumed.Answers())

	tech, _ := resumed.Answer("tech")
	assert.Equal(t, []string{"go", "aws"}, tech.Items)
	langs, ok := resumed.Answer("langs")
	require.True(t, ok)
	assert.Equal(t, assessment.KindMulti, langs.Kind)
	assert.True(t, langs.IsEmpty())
	cv, _ := resumed.Answer("cv")
	require.NotNil(t, cv.File)
	assert.Equal(t, assessment.FileRef{Name: "resume.pdf", Size: 48213, Type: "application/pdf"}, *cv.File)
}

func TestResume_NoDraftStartsEmpty(t *testing.T) {
	h := newHarness()
	s := h.open(t)
	assert.False(t, s.Resumed())
	assert.Empty(t, s.Answers())
}

func TestResume_ReadFailureStartsEmpty(t *testing.T) {
	h := newHarness()
	h.drafts.FailGet = errors.New("unavailable")
	s := h.open(t)
	assert.False(t, s.Resumed())
	assert.Equal(t, PhaseEditing, s.Phase())
}

func TestAutosave_WriteFailureKeepsEditing(t *testing.T) {
	h := newHarness()
	h.drafts.FailSet = errors.New("quota exceeded")
	s := h.open(t)

	require.NoError(t, s.Set("q1", assessment.Choice("no")))
	h.clock.Advance(DefaultAutosaveDelay)

	assert.Equal(t, PhaseEditing, s.Phase())
	a, ok := s.Answer("q1")
	require.True(t, ok)
	assert.Equal(t, "no", a.Text)
}

func TestClose_CancelsPendingAutosave(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	require.NoError(t, s.Set("q1", assessment.Choice("yes")))
	s.Close()
	h.clock.Advance(time.Hour)

	assert.Equal(t, 0, h.drafts.Writes())
	assert.False(t, h.drafts.Has(draft.ResponseKey("a1", "c1")))
}

func TestFlush_WritesImmediately(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	require.NoError(t, s.Set("q1", assessment.Choice("no")))
	s.Flush()
	assert.Equal(t, 1, h.drafts.Writes())

	h.clock.Advance(time.Hour)
	assert.Equal(t, 1, h.drafts.Writes())
}

func TestSet_UnknownQuestion(t *testing.T) {
	h := newHarness()
	s := h.open(t)
	assert.ErrorIs(t, s.Set("nope", assessment.Text("x")), ErrUnknownQuestion)
}

func TestSubmit_RefusedWhenRequiredMissing(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	sub, err := s.Submit(context.Background())
	assert.Nil(t, sub)
	require.ErrorIs(t, err, ErrInvalid)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Violations, "q1")
	assert.NotContains(t, verr.Violations, "q2", "hidden question validated")

	assert.Equal(t, PhaseEditing, s.Phase())
	assert.Contains(t, s.Violations(), "q1")
	assert.Empty(t, h.transport.requests)
}

func TestSet_ClearsViolation(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	require.Contains(t, s.Violations(), "q1")

	require.NoError(t, s.Set("q1", assessment.Choice("yes")))
	assert.NotContains(t, s.Violations(), "q1")
}

func TestSubmit_RevealedQuestionValidated(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	require.NoError(t, s.Set("q1", assessment.Choice("yes")))
	_, err := s.Submit(context.Background())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"q2"}, verr.Violations.IDs())
	assert.Equal(t, validation.MsgRequired, verr.Violations["q2"].Message)
}

func TestSubmit_SuccessRemovesDraft(t *testing.T) {
	h := newHarness()
	s := h.open(t)
	key := draft.ResponseKey("a1", "c1")

	require.NoError(t, s.Set("q1", assessment.Choice("no")))
	h.clock.Advance(DefaultAutosaveDelay)
	require.True(t, h.drafts.Has(key))

	require.NoError(t, s.Set("q3", assessment.Number("3")))
	sub, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, PhaseSubmitted, s.Phase())
	assert.Same(t, sub, s.Submission())
	assert.False(t, h.drafts.Has(key), "draft not removed")

	require.Len(t, h.transport.requests, 1)
	req := h.transport.requests[0]
	assert.Equal(t, "job-1", req.JobID)
	assert.Equal(t, "a1", req.AssessmentID)
	assert.Equal(t, "c1", req.CandidateID)
	assert.Equal(t, "3", req.Answers["q3"].Text)

	h.clock.Advance(time.Hour)
	assert.False(t, h.drafts.Has(key), "stale autosave recreated the draft")

	assert.ErrorIs(t, s.Set("q1", assessment.Choice("yes")), ErrSubmitted)
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitted)
}

func TestSubmit_TransportFailureKeepsDraft(t *testing.T) {
	h := newHarness()
	h.transport.err = errors.New("503 service unavailable")
	s := h.open(t)
	key := draft.ResponseKey("a1", "c1")

	require.NoError(t, s.Set("q1", assessment.Choice("no")))
	_, err := s.Submit(context.Background())

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.ErrorIs(t, err, h.transport.err)
	assert.Equal(t, PhaseEditing, s.Phase())

	require.True(t, h.drafts.Has(key), "draft lost on transport failure")
	assert.Equal(t, "no", h.saved(t)["q1"].Text)

	h.transport.err = nil
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitted, s.Phase())
	assert.False(t, h.drafts.Has(key))
}

func TestProgress_CountsVisibleQuestions(t *testing.T) {
	h := newHarness()
	s := h.open(t)

	answered, total := s.Progress()
	assert.Equal(t, 0, answered)
	assert.Equal(t, 2, total)

	require.NoError(t, s.Set("q1", assessment.Choice("yes")))
	answered, total = s.Progress()
	assert.Equal(t, 1, answered)
	assert.Equal(t, 3, total)
	assert.Len(t, s.Visible(), 3)

	require.NoError(t, s.Clear("q1"))
	_, ok := s.Answer("q1")
	assert.False(t, ok)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "editing", PhaseEditing.String())
	assert.Equal(t, "submitting", PhaseSubmitting.String())
	assert.Equal(t, "submitted", PhaseSubmitted.String())
}
