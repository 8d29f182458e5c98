package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/debounce"
	"github.com/abhisek/talentflow/internal/draft"
)

// DefaultAutosaveDelay is the quiet period before a schema draft is written.
const DefaultAutosaveDelay = time.Second

// AssessmentStore loads and saves whole assessments. Load returns nil, nil
// when the job has none.
type AssessmentStore interface {
	Load(ctx context.Context, jobID string) (*assessment.Assessment, error)
	Save(ctx context.Context, a *assessment.Assessment) (*assessment.Assessment, error)
}

// Source tells where an editor's starting assessment came from.
type Source int

const (
	SourceNew    Source = iota // Default assessment
	SourceStored               // Last saved assessment
	SourceDraft                // Unsaved edits from an earlier editor
)

func (s Source) String() string {
	switch s {
	case SourceDraft:
		return "draft"
	case SourceStored:
		return "stored"
	default:
		return "new"
	}
}

// EditorOptions configures OpenEditor.
type EditorOptions struct {
	JobID string

	// Title is used when a new assessment has to be created.
	Title string

	Store  AssessmentStore
	Drafts draft.Store

	AutosaveDelay time.Duration
	Clock         debounce.Clock
	Logger        logrus.FieldLogger
	NewID         func() string
}

// Editor is a Builder whose edits are autosaved as a draft until saved to
// the assessment store.
type Editor struct {
	*Builder

	jobID    string
	key      string
	store    AssessmentStore
	drafts   draft.Store
	autosave *debounce.Debouncer
	log      logrus.FieldLogger
	source   Source
}

// OpenEditor starts editing the assessment of a job. It resumes an unsaved
// draft when one exists, otherwise the stored assessment, otherwise a new
// default one. Draft read failures are logged and skipped.
func OpenEditor(ctx context.Context, opts EditorOptions) (*Editor, error) {
	if opts.JobID == "" {
		return nil, errors.New("builder: job id is required")
	}
	if opts.Store == nil || opts.Drafts == nil {
		return nil, errors.New("builder: assessment store and draft store are required")
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

	key := draft.SchemaKey(opts.JobID)
	e := &Editor{
		jobID:    opts.JobID,
		key:      key,
		store:    opts.Store,
		drafts:   opts.Drafts,
		autosave: debounce.New(delay, opts.Clock),
		log:      logger.WithFields(logrus.Fields{"job_id": opts.JobID, "draft_key": key}),
	}

	start, source, err := e.load(ctx, opts.Title, opts.NewID)
	if err != nil {
		return nil, err
	}
	e.source = source
	e.Builder = New(start, opts.NewID)
	e.Builder.onChange = e.scheduleDraft
	e.log.WithField("source", source).Debug("Opened assessment editor")
	return e, nil
}

func (e *Editor) load(ctx context.Context, title string, newID func() string) (*assessment.Assessment, Source, error) {
	var saved assessment.Assessment
	ok, err := draft.Load(ctx, e.drafts, e.key, &saved)
	switch {
	case err != nil:
		e.log.WithError(err).Warn("Could not resume assessment draft")
	case ok:
		return &saved, SourceDraft, nil
	}

	stored, err := e.store.Load(ctx, e.jobID)
	if err != nil {
		return nil, SourceNew, fmt.Errorf("load assessment for job %s: %w", e.jobID, err)
	}
	if stored != nil {
		return stored, SourceStored, nil
	}
	return Default(e.jobID, title, newID), SourceNew, nil
}

func (e *Editor) scheduleDraft(snapshot *assessment.Assessment) {
	e.autosave.Trigger(func() {
		if err := draft.Save(context.Background(), e.drafts, e.key, snapshot); err != nil {
			e.log.WithError(err).Warn("Could not autosave assessment draft")
			return
		}
		e.log.Debug("Autosaved assessment draft")
	})
}

// Source reports where the editor's starting assessment came from.
func (e *Editor) Source() Source { return e.source }

// DraftKey returns the key edits are autosaved under.
func (e *Editor) DraftKey() string { return e.key }

// Save checks the assessment and replaces the stored one with it. On
// success the editor holds the persisted form and the draft is removed. On
// failure the draft keeps the latest edits.
func (e *Editor) Save(ctx context.Context) (*assessment.Assessment, error) {
	current := e.Builder.Assessment()
	if err := assessment.Check(current).Err(); err != nil {
		return nil, err
	}

	e.autosave.Flush()

	saved, err := e.store.Save(ctx, current)
	if err != nil {
		e.log.WithError(err).Warn("Assessment save failed; draft kept")
		return nil, &SaveError{JobID: e.jobID, Err: err}
	}

	e.autosave.Cancel()
	e.Builder.a = saved.Clone()
	e.source = SourceStored
	if err := e.drafts.Remove(ctx, e.key); err != nil {
		e.log.WithError(err).Warn("Could not remove assessment draft after save")
	}
	e.log.WithField("assessment_id", saved.ID).Info("Assessment saved")
	return saved.Clone(), nil
}

// Discard drops unsaved edits and their draft, then reloads the stored
// assessment or a new default one.
func (e *Editor) Discard(ctx context.Context, title string) error {
	e.autosave.Cancel()
	if err := e.drafts.Remove(ctx, e.key); err != nil {
		e.log.WithError(err).Warn("Could not remove assessment draft")
	}
	stored, err := e.store.Load(ctx, e.jobID)
	if err != nil {
		return fmt.Errorf("load assessment for job %s: %w", e.jobID, err)
	}
	if stored == nil {
		e.Builder.a = Default(e.jobID, title, e.Builder.newID)
		e.source = SourceNew
		return nil
	}
	e.Builder.a = stored.Clone()
	e.source = SourceStored
	return nil
}

// Flush writes a pending draft immediately.
func (e *Editor) Flush() { e.autosave.Flush() }

// Close drops a pending draft write.
func (e *Editor) Close() { e.autosave.Cancel() }
