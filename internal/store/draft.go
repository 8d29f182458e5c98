package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// DraftRepo stores drafts in the drafts table. It implements draft.Store.
type DraftRepo struct {
	drv *entsql.Driver
	now func() time.Time
}

// Get returns the draft stored under key, or nil, nil when there is none.
func (r *DraftRepo) Get(ctx context.Context, key string) ([]byte, error) {
	b := sqlBuilder()
	t := b.Table("drafts")
	sel := b.Select(t.C("value")).From(t).Where(entsql.EQ(t.C("key"), key)).Limit(1)

	rows, err := rowsQuery(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query draft: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var value []byte
	if err := rows.Scan(&value); err != nil {
		return nil, fmt.Errorf("scan draft: %w", err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set writes value under key, replacing any previous draft.
func (r *DraftRepo) Set(ctx context.Context, key string, value []byte) error {
	ins := sqlBuilder().Insert("drafts").
		Columns("key", "value", "updated_at").
		Values(key, value, formatTime(r.now())).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues())
	if err := execQuery(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Remove deletes the draft under key. Removing a missing key is not an
// error.
func (r *DraftRepo) Remove(ctx context.Context, key string) error {
	del := sqlBuilder().Delete("drafts").Where(entsql.EQ("key", key))
	if err := execQuery(ctx, r.drv, del); err != nil {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}

// DraftInfo describes a stored draft without its contents.
type DraftInfo struct {
	Key       string
	UpdatedAt time.Time
}

// List returns the drafts whose key starts with prefix, most recently
// updated first.
func (r *DraftRepo) List(ctx context.Context, prefix string) ([]DraftInfo, error) {
	b := sqlBuilder()
	t := b.Table("drafts")
	sel := b.Select(t.C("key"), t.C("updated_at")).From(t).
		OrderBy(entsql.Desc(t.C("updated_at")))

	rows, err := rowsQuery(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var out []DraftInfo
	for rows.Next() {
		var (
			info DraftInfo
			ts   string
		)
		if err := rows.Scan(&info.Key, &ts); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		if !strings.HasPrefix(info.Key, prefix) {
			continue
		}
		if info.UpdatedAt, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("draft %s updated_at: %w", info.Key, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
