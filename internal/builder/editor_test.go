package builder

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
)

type memAssessments struct {
	byJob   map[string]*assessment.Assessment
	saveErr error
	saves   int
}

func newMemAssessments() *memAssessments {
	return &memAssessments{byJob: make(map[string]*assessment.Assessment)}
}

func (m *memAssessments) Load(_ context.Context, jobID string) (*assessment.Assessment, error) {
	a, ok := m.byJob[jobID]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

func (m *memAssessments) Save(_ context.Context, a *assessment.Assessment) (*assessment.Assessment, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.saves++
	out := a.Clone()
	if out.ID == "" {
		out.ID = "assessment-1"
		out.CreatedAt = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	}
	out.UpdatedAt = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	m.byJob[out.JobID] = out.Clone()
	return out, nil
}

type editorHarness struct {
	clock  *debounce.FakeClock
	drafts *draft.MemoryStore
	store  *memAssessments
}

func newEditorHarness() *editorHarness {
	return &editorHarness{
		clock:  debounce.NewFakeClock(),
		drafts: draft.NewMemoryStore(),
		store:  newMemAssessments(),
	}
}

func (h *editorHarness) open(t *testing.T) *Editor {
	t.Helper()
	e, err := OpenEditor(context.Background(), EditorOptions{
		JobID:  "job-1",
		Title:  "Backend Engineer Assessment",
		Store:  h.store,
		Drafts: h.drafts,
		Clock:  h.clock,
		NewID:  seqIDs(),
	})
	require.NoError(t, err)
	return e
}

func TestOpenEditor_NewDefault(t *testing.T) {
	h := newEditorHarness()
	e := h.open(t)

	assert.Equal(t, SourceNew, e.Source())
	a := e.Assessment()
	assert.Equal(t, "Backend Engineer Assessment", a.Title)
	require.Len(t, a.Sections, 1)
	assert.Equal(t, draft.SchemaKey("job-1"), e.DraftKey())
}

func TestEditor_AutosaveCoalescesAndResumes(t *testing.T) {
	h := newEditorHarness()
	e := h.open(t)
	sid := e.Assessment().Sections[0].ID

	qid, err := e.AddQuestion(sid, assessment.TypeShortText)
	require.NoError(t, err)
	for _, title := range []string{"W", "Why", "Why us?"} {
		title := title
		require.NoError(t, e.UpdateQuestion(qid, QuestionUpdate{Title: &title}))
	}
	assert.Equal(t, 0, h.drafts.Writes())

	h.clock.Advance(DefaultAutosaveDelay)
	assert.Equal(t, 1, h.drafts.Writes())
	want := e.Assessment()
	e.Close()

	resumed := h.open(t)
	assert.Equal(t, SourceDraft, resumed.Source())
	assert.Equal(t, want, resumed.Assessment())
}

func TestEditor_RejectedMutationSchedulesNothing(t *testing.T) {
	h := newEditorHarness()
	e := h.open(t)

	err := e.RemoveSection(e.Assessment().Sections[0].ID)
	require.ErrorIs(t, err, ErrLastSection)
	h.clock.Advance(time.Hour)
	assert.Equal(t, 0, h.drafts.Writes())
}

func TestEditor_SaveRemovesDraft(t *testing.T) {
	h := newEditorHarness()
	e := h.open(t)
	sid := e.Assessment().Sections[0].ID
	_, err := e.AddQuestion(sid, assessment.TypeNumeric)
	require.NoError(t, err)

	saved, err := e.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "assessment-1", saved.ID)
	assert.False(t, saved.UpdatedAt.IsZero())

	assert.Equal(t, "assessment-1", e.Assessment().ID, "editor does not hold the persisted form")
	assert.False(t, h.drafts.Has(e.DraftKey()))
	assert.Equal(t, SourceStored, e.Source())

	h.clock.Advance(time.Hour)
	assert.False(t, h.drafts.Has(e.DraftKey()), "stale autosave recreated the draft")

	reopened := h.open(t)
	assert.Equal(t, SourceStored, reopened.Source())
	assert.Equal(t, "assessment-1", reopened.Assessment().ID)
}

func TestEditor_SaveFailureKeepsDraft(t *testing.T) {
	h := newEditorHarness()
	h.store.saveErr = errors.New("connection reset")
	e := h.open(t)
	_, err := e.AddSection("Experience")
	require.NoError(t, err)

	_, err = e.Save(context.Background())
	var serr *SaveError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, h.store.saveErr)

	require.True(t, h.drafts.Has(e.DraftKey()), "draft lost on failed save")
	var d assessment.Assessment
	ok, err := draft.Load(context.Background(), h.drafts, e.DraftKey(), &d)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, d.Sections, 2)
	assert.Len(t, e.Assessment().Sections, 2)
}

func TestEditor_SaveRefusesInvalidSchema(t *testing.T) {
	h := newEditorHarness()
	h.store.byJob["job-1"] = &assessment.Assessment{
		ID: "a", JobID: "job-1", Title: "Broken",
		Sections: []assessment.Section{{ID: "s", Order: 1, Questions: []assessment.Question{
			{ID: "q", Type: assessment.TypeSingleChoice, Order: 1},
		}}},
	}
	e := h.open(t)

	_, err := e.Save(context.Background())
	var serr *assessment.SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, h.store.saves)
}

func TestEditor_Discard(t *testing.T) {
	h := newEditorHarness()
	e := h.open(t)
	_, err := e.AddSection("Temp")
	require.NoError(t, err)
	e.Flush()
	require.True(t, h.drafts.Has(e.DraftKey()))

	require.NoError(t, e.Discard(context.Background(), ""))
	assert.False(t, h.drafts.Has(e.DraftKey()))
	assert.Len(t, e.Assessment().Sections, 1)
	assert.Equal(t, SourceNew, e.Source())
}

func TestEditor_DraftReadFailureFallsBack(t *testing.T) {
	h := newEditorHarness()
	h.drafts.FailGet = errors.New("corrupt")
	h.store.byJob["job-1"] = Default("job-1", "Stored", nil)

	e := h.open(t)
	assert.Equal(t, SourceStored, e.Source())
	assert.Equal(t, "Stored", e.Assessment().Title)
}
