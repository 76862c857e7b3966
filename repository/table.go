// ABOUTME: Shared gateway access for a single entity table
// ABOUTME: Decodes rows and classifies gateway failures for every repository
package repository

import (
	"context"

	"github.com/harperreed/rapport/db"
)

type entityTable[T any] struct {
	gw     db.Gateway
	table  string
	entity string
	order  []db.Order
	decode func(db.Row) (T, error)
}

func (t entityTable[T]) decodeAll(op string, rows []db.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := t.decode(r)
		if err != nil {
			return nil, &RemoteError{Op: op, Table: t.table, Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// all selects rows matching f in the table's default order.
func (t entityTable[T]) all(ctx context.Context, f db.Filter) ([]T, error) {
	rows, err := t.gw.Select(ctx, t.table, db.Query{Filter: f, Order: t.order})
	if err != nil {
		return nil, &RemoteError{Op: "fetch", Table: t.table, Err: err}
	}
	return t.decodeAll("fetch", rows)
}

func (t entityTable[T]) one(ctx context.Context, id string) (T, error) {
	var zero T
	row, err := t.gw.SelectOne(ctx, t.table, id)
	if err != nil {
		return zero, classify("fetch", t.table, t.entity, id, err)
	}
	v, err := t.decode(row)
	if err != nil {
		return zero, &RemoteError{Op: "fetch", Table: t.table, Err: err}
	}
	return v, nil
}

func (t entityTable[T]) insert(ctx context.Context, row db.Row) (T, error) {
	var zero T
	created, err := t.gw.Insert(ctx, t.table, row)
	if err != nil {
		return zero, &RemoteError{Op: "create", Table: t.table, Err: err}
	}
	v, err := t.decode(created)
	if err != nil {
		return zero, &RemoteError{Op: "create", Table: t.table, Err: err}
	}
	return v, nil
}

// update applies patch; an empty patch re-reads the row instead of writing.
func (t entityTable[T]) update(ctx context.Context, id string, patch db.Row) (T, error) {
	if len(patch) == 0 {
		return t.one(ctx, id)
	}
	var zero T
	updated, err := t.gw.Update(ctx, t.table, id, patch)
	if err != nil {
		return zero, classify("update", t.table, t.entity, id, err)
	}
	v, err := t.decode(updated)
	if err != nil {
		return zero, &RemoteError{Op: "update", Table: t.table, Err: err}
	}
	return v, nil
}

func (t entityTable[T]) remove(ctx context.Context, id string) error {
	return classify("delete", t.table, t.entity, id, t.gw.Delete(ctx, t.table, id))
}

func (t entityTable[T]) exists(ctx context.Context, id string) error {
	_, err := t.gw.SelectOne(ctx, t.table, id)
	return classify("fetch", t.table, t.entity, id, err)
}
