package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence used by the
// activity log. Unlike SQLite rowids, a sequence is never reused after the
// newest events are pruned.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo over the events table.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
	now func() time.Time
}

func (r *eventRepo) Append(ctx context.Context, ev Event) (Event, error) {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return Event{}, err
	}
	ev.Sequence = seq
	ev.Timestamp = r.now().UTC()

	ins := sqlBuilder().Insert("events").
		Columns("sequence", "kind", "job_id", "assessment_id", "candidate_id", "detail", "timestamp").
		Values(ev.Sequence, string(ev.Kind), ev.JobID, ev.AssessmentID, ev.CandidateID, ev.Detail, formatTime(ev.Timestamp))
	if err := execQuery(ctx, r.drv, ins); err != nil {
		return Event{}, fmt.Errorf("append %s event: %w", ev.Kind, err)
	}
	return ev, nil
}

func (r *eventRepo) Query(ctx context.Context, opts QueryOpts) ([]Event, error) {
	b := sqlBuilder()
	t := b.Table("events")
	sel := b.Select(
		t.C("sequence"), t.C("kind"), t.C("job_id"), t.C("assessment_id"),
		t.C("candidate_id"), t.C("detail"), t.C("timestamp"),
	).From(t).OrderBy(t.C("sequence"))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT(t.C("sequence"), opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT(t.C("sequence"), opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE(t.C("timestamp"), formatTime(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE(t.C("timestamp"), formatTime(opts.To)))
	}
	if opts.JobID != "" {
		preds = append(preds, entsql.EQ(t.C("job_id"), opts.JobID))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	rows, err := rowsQuery(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev   Event
			kind string
			ts   string
		)
		if err := rows.Scan(&ev.Sequence, &kind, &ev.JobID, &ev.AssessmentID, &ev.CandidateID, &ev.Detail, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = EventKind(kind)
		if ev.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("event %d timestamp: %w", ev.Sequence, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) Prune(ctx context.Context, keep int) error {
	b := sqlBuilder()
	t := b.Table("events")
	sel := b.Select(t.C("sequence")).From(t).
		OrderBy(entsql.Desc(t.C("sequence"))).
		Offset(keep).
		Limit(1)

	rows, err := rowsQuery(ctx, r.drv, sel)
	if err != nil {
		return fmt.Errorf("query events for prune: %w", err)
	}
	var threshold int64
	found := rows.Next()
	if found {
		err = rows.Scan(&threshold)
	}
	rows.Close()
	if err != nil {
		return fmt.Errorf("scan prune threshold: %w", err)
	}
	if !found {
		return nil // fewer than keep events exist
	}

	del := b.Delete("events").Where(entsql.LTE("sequence", threshold))
	if err := execQuery(ctx, r.drv, del); err != nil {
		return fmt.Errorf("prune events: %w", err)
	}
	return nil
}
