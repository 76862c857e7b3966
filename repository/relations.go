// ABOUTME: Many-to-many association maintenance through link tables
// ABOUTME: Implements replace-all writes as delete-then-insert without a transaction
package repository

import (
	"context"

	"github.com/harperreed/rapport/db"
)

// relation maintains the link rows of one join, seen from its parent side.
type relation struct {
	gw   db.Gateway
	join db.Join
}

// replace removes every link row for parentID, then inserts one row per id.
// The two steps are separate gateway calls: if the insert fails the parent is
// left with no associations and the error is returned.
func (r relation) replace(ctx context.Context, parentID string, relatedIDs []string) error {
	if _, err := r.gw.DeleteWhere(ctx, r.join.Table, db.Filter{r.join.ParentColumn: parentID}); err != nil {
		return &RemoteError{Op: "clear relations", Table: r.join.Table, Err: err}
	}
	return r.add(ctx, parentID, relatedIDs)
}

func (r relation) add(ctx context.Context, parentID string, relatedIDs []string) error {
	ids := unique(relatedIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]db.Row, len(ids))
	for i, id := range ids {
		rows[i] = db.Row{r.join.ParentColumn: parentID, r.join.RelatedColumn: id}
	}
	if _, err := r.gw.InsertMany(ctx, r.join.Table, rows); err != nil {
		return &RemoteError{Op: "insert relations", Table: r.join.Table, Err: err}
	}
	return nil
}

func (r relation) clear(ctx context.Context, parentID string) error {
	if _, err := r.gw.DeleteWhere(ctx, r.join.Table, db.Filter{r.join.ParentColumn: parentID}); err != nil {
		return &RemoteError{Op: "clear relations", Table: r.join.Table, Err: err}
	}
	return nil
}

// ids lists the related ids linked to parentID in link order.
func (r relation) ids(ctx context.Context, parentID string) ([]string, error) {
	rows, err := r.gw.Select(ctx, r.join.Table, db.Query{
		Filter: db.Filter{r.join.ParentColumn: parentID},
		Order:  []db.Order{{Column: "created_at"}, {Column: r.join.RelatedColumn}},
	})
	if err != nil {
		return nil, &RemoteError{Op: "fetch relations", Table: r.join.Table, Err: err}
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, text(row, r.join.RelatedColumn))
	}
	return out, nil
}

// index loads every link row once and groups related ids by parent.
func (r relation) index(ctx context.Context) (map[string][]string, error) {
	rows, err := r.gw.Select(ctx, r.join.Table, db.Query{
		Order: []db.Order{{Column: "created_at"}, {Column: r.join.RelatedColumn}},
	})
	if err != nil {
		return nil, &RemoteError{Op: "fetch relations", Table: r.join.Table, Err: err}
	}
	out := make(map[string][]string)
	for _, row := range rows {
		parent := text(row, r.join.ParentColumn)
		out[parent] = append(out[parent], text(row, r.join.RelatedColumn))
	}
	return out, nil
}

// unique drops blanks and duplicates, keeping first occurrences in order.
func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
