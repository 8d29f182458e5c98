package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/talentflow/internal/assessment"
)

// AssessmentRepo stores one assessment per job. Saves replace the whole
// document; the last write wins.
type AssessmentRepo struct {
	drv    *entsql.Driver
	now    func() time.Time
	events EventRepo
}

// Load returns the assessment of a job, or nil, nil when the job has none.
func (r *AssessmentRepo) Load(ctx context.Context, jobID string) (*assessment.Assessment, error) {
	return loadAssessment(ctx, r.drv, jobID)
}

func loadAssessment(ctx context.Context, eq dialect.ExecQuerier, jobID string) (*assessment.Assessment, error) {
	b := sqlBuilder()
	t := b.Table("assessments")
	sel := b.Select(t.C("data")).From(t).Where(entsql.EQ(t.C("job_id"), jobID)).Limit(1)

	rows, err := rowsQuery(ctx, eq, sel)
	if err != nil {
		return nil, fmt.Errorf("query assessment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var data string
	if err := rows.Scan(&data); err != nil {
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	var a assessment.Assessment
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("decode assessment for job %s: %w", jobID, err)
	}
	return &a, nil
}

// Save replaces the job's assessment with a. The stored record keeps its
// ID and creation time; UpdatedAt is always refreshed. A new record keeps
// a's ID unless it is empty or already used by another job. The persisted
// form is returned.
func (r *AssessmentRepo) Save(ctx context.Context, a *assessment.Assessment) (*assessment.Assessment, error) {
	if a == nil || a.JobID == "" {
		return nil, fmt.Errorf("save assessment: job id is required")
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	out := a.Clone()
	existing, err := loadAssessment(ctx, tx, a.JobID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	now := r.now().UTC()
	switch {
	case existing != nil:
		out.ID = existing.ID
		out.CreatedAt = existing.CreatedAt
	default:
		taken, err := assessmentIDTaken(ctx, tx, out.ID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		// A copy of another job's assessment gets its own identity.
		if out.ID == "" || taken {
			out.ID = uuid.NewString()
		}
		out.CreatedAt = now
	}
	out.UpdatedAt = now

	data, err := json.Marshal(out)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("encode assessment: %w", err)
	}

	ins := sqlBuilder().Insert("assessments").
		Columns("id", "job_id", "title", "data", "created_at", "updated_at").
		Values(out.ID, out.JobID, out.Title, string(data), formatTime(out.CreatedAt), formatTime(out.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("job_id"), entsql.ResolveWithNewValues())
	if err := execQuery(ctx, tx, ins); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("write assessment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assessment: %w", err)
	}

	// Activity log failures do not fail the write above.
	_, _ = r.events.Append(ctx, Event{
		Kind:         EventAssessmentSaved,
		JobID:        out.JobID,
		AssessmentID: out.ID,
		Detail:       fmt.Sprintf("%d sections, %d questions", len(out.Sections), out.QuestionCount()),
	})
	return out, nil
}

func assessmentIDTaken(ctx context.Context, eq dialect.ExecQuerier, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	b := sqlBuilder()
	t := b.Table("assessments")
	sel := b.Select(t.C("job_id")).From(t).Where(entsql.EQ(t.C("id"), id)).Limit(1)

	rows, err := rowsQuery(ctx, eq, sel)
	if err != nil {
		return false, fmt.Errorf("query assessment id: %w", err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

// AssessmentSummary is a listing row.
type AssessmentSummary struct {
	ID        string
	JobID     string
	Title     string
	UpdatedAt time.Time
}

// List returns every stored assessment ordered by job.
func (r *AssessmentRepo) List(ctx context.Context) ([]AssessmentSummary, error) {
	b := sqlBuilder()
	t := b.Table("assessments")
	sel := b.Select(t.C("id"), t.C("job_id"), t.C("title"), t.C("updated_at")).From(t).
		OrderBy(t.C("job_id"))

	rows, err := rowsQuery(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentSummary
	for rows.Next() {
		var (
			s  AssessmentSummary
			ts string
		)
		if err := rows.Scan(&s.ID, &s.JobID, &s.Title, &ts); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if s.UpdatedAt, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("assessment %s updated_at: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
