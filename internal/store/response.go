package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/session"
)

// ResponseRepo records submitted responses. It implements
// session.Transport.
type ResponseRepo struct {
	drv    *entsql.Driver
	now    func() time.Time
	events EventRepo
}

// Submit stores a completed response and returns the created submission.
func (r *ResponseRepo) Submit(ctx context.Context, req session.SubmitRequest) (*assessment.Submission, error) {
	answers := req.Answers
	if answers == nil {
		answers = assessment.Responses{}
	}
	sub := &assessment.Submission{
		ID:           uuid.NewString(),
		JobID:        req.JobID,
		AssessmentID: req.AssessmentID,
		CandidateID:  req.CandidateID,
		Answers:      answers.Clone(),
		SubmittedAt:  r.now().UTC(),
		Status:       assessment.StatusSubmitted,
	}

	data, err := json.Marshal(sub.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	ins := sqlBuilder().Insert("assessment_responses").
		Columns("id", "job_id", "assessment_id", "candidate_id", "status", "answers", "submitted_at").
		Values(sub.ID, sub.JobID, sub.AssessmentID, sub.CandidateID, string(sub.Status), string(data), formatTime(sub.SubmittedAt))
	if err := execQuery(ctx, r.drv, ins); err != nil {
		return nil, fmt.Errorf("write response: %w", err)
	}

	// Activity log failures do not fail the write above.
	_, _ = r.events.Append(ctx, Event{
		Kind:         EventResponseSubmitted,
		JobID:        sub.JobID,
		AssessmentID: sub.AssessmentID,
		CandidateID:  sub.CandidateID,
		Detail:       fmt.Sprintf("%d answers", len(sub.Answers)),
	})
	return sub, nil
}

// Get returns a submission by ID, or nil, nil when it does not exist.
func (r *ResponseRepo) Get(ctx context.Context, id string) (*assessment.Submission, error) {
	subs, err := r.list(ctx, entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[0], nil
}

// List returns submissions matching f, newest first.
func (r *ResponseRepo) List(ctx context.Context, f ResponseFilter) ([]*assessment.Submission, error) {
	var preds []*entsql.Predicate
	if f.JobID != "" {
		preds = append(preds, entsql.EQ("job_id", f.JobID))
	}
	if f.AssessmentID != "" {
		preds = append(preds, entsql.EQ("assessment_id", f.AssessmentID))
	}
	if f.CandidateID != "" {
		preds = append(preds, entsql.EQ("candidate_id", f.CandidateID))
	}
	var where *entsql.Predicate
	if len(preds) > 0 {
		where = entsql.And(preds...)
	}
	return r.list(ctx, where, f.Limit)
}

func (r *ResponseRepo) list(ctx context.Context, where *entsql.Predicate, limit int) ([]*assessment.Submission, error) {
	b := sqlBuilder()
	t := b.Table("assessment_responses")
	sel := b.Select(
		t.C("id"), t.C("job_id"), t.C("assessment_id"), t.C("candidate_id"),
		t.C("status"), t.C("answers"), t.C("submitted_at"),
	).From(t).OrderBy(entsql.Desc(t.C("submitted_at")))
	if where != nil {
		sel.Where(where)
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := rowsQuery(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var out []*assessment.Submission
	for rows.Next() {
		var (
			sub     assessment.Submission
			status  string
			answers string
			ts      string
		)
		if err := rows.Scan(&sub.ID, &sub.JobID, &sub.AssessmentID, &sub.CandidateID, &status, &answers, &ts); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		sub.Status = assessment.Status(status)
		if err := json.Unmarshal([]byte(answers), &sub.Answers); err != nil {
			return nil, fmt.Errorf("decode response %s: %w", sub.ID, err)
		}
		if sub.SubmittedAt, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("response %s submitted_at: %w", sub.ID, err)
		}
		out = append(out, &sub)
	}
	return out, rows.Err()
}
