// ABOUTME: Contract tests every Gateway backend must pass
// ABOUTME: Runs the same scenarios against SQLite and in-memory Badger
package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) Gateway
}

var backends = []backend{
	{"sqlite", func(t *testing.T) Gateway {
		g, err := OpenSQLiteGateway(filepath.Join(t.TempDir(), "rapport.db"))
		require.NoError(t, err)
		return g
	}},
	{"badger", func(t *testing.T) Gateway {
		g, err := NewMemoryGateway()
		require.NoError(t, err)
		return g
	}},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, g Gateway)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			g := b.open(t)
			defer func() { _ = g.Close() }()
			fn(t, g)
		})
	}
}

func setClock(g Gateway, now func() time.Time) {
	switch gw := g.(type) {
	case *SQLiteGateway:
		gw.now = now
	case *BadgerGateway:
		gw.now = now
	}
}

func insertContact(t *testing.T, g Gateway, name string) Row {
	row, err := g.Insert(context.Background(), TableContacts, Row{"name": name})
	require.NoError(t, err)
	return row
}

func TestGatewayInsertAssignsServerFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		row := insertContact(t, g, "Ada")

		id, _ := row["id"].(string)
		assert.NotEmpty(t, id)
		assert.Equal(t, "Ada", row["name"])
		assert.NotNil(t, row["created_at"])
		assert.Equal(t, row["created_at"], row["updated_at"])
		assert.Nil(t, row["email"])

		got, err := g.SelectOne(context.Background(), TableContacts, id)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got["name"])
	})
}

func TestGatewaySelectFilterAndOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		for _, name := range []string{"Zoe", "Amy", "Bob"} {
			_, err := g.Insert(ctx, TableContacts, Row{"name": name, "relationship_type": "friend"})
			require.NoError(t, err)
		}
		_, err := g.Insert(ctx, TableContacts, Row{"name": "Cal", "relationship_type": "family"})
		require.NoError(t, err)

		rows, err := g.Select(ctx, TableContacts, Query{
			Filter: Filter{"relationship_type": "friend"},
			Order:  []Order{{Column: "name"}},
		})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []any{"Amy", "Bob", "Zoe"}, []any{rows[0]["name"], rows[1]["name"], rows[2]["name"]})

		rows, err = g.Select(ctx, TableContacts, Query{Order: []Order{{Column: "name", Desc: true}}})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "Zoe", rows[0]["name"])

		rows, err = g.Select(ctx, TableContacts, Query{Filter: Filter{"email": nil}})
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})
}

func TestGatewayRejectsUnknownTablesAndColumns(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		_, err := g.Select(ctx, "widgets", Query{})
		assert.True(t, errors.Is(err, ErrUnknownTable))

		_, err = g.Insert(ctx, TableContacts, Row{"name": "Ada", "nickname": "A"})
		assert.Error(t, err)

		_, err = g.Select(ctx, TableContacts, Query{Order: []Order{{Column: "nickname"}}})
		assert.Error(t, err)
	})
}

func TestGatewayUpdate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		setClock(g, func() time.Time { return base })
		row := insertContact(t, g, "Ada")

		setClock(g, func() time.Time { return base.Add(time.Minute) })
		updated, err := g.Update(ctx, TableContacts, row["id"].(string), Row{"email": "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", updated["email"])
		assert.Equal(t, "Ada", updated["name"])
		assert.Equal(t, row["created_at"], updated["created_at"])
		assert.Equal(t, FormatTimestamp(base.Add(time.Minute)), updated["updated_at"])

		_, err = g.Update(ctx, TableContacts, "missing", Row{"name": "x"})
		assert.True(t, errors.Is(err, ErrNotFound))

		_, err = g.Update(ctx, TableContacts, row["id"].(string), Row{"id": "other"})
		assert.Error(t, err)
	})
}

func TestGatewayDelete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		row := insertContact(t, g, "Ada")
		id := row["id"].(string)

		require.NoError(t, g.Delete(ctx, TableContacts, id))
		_, err := g.SelectOne(ctx, TableContacts, id)
		assert.True(t, errors.Is(err, ErrNotFound))

		err = g.Delete(ctx, TableContacts, id)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestGatewayLinksAndSelectRelated(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		a := insertContact(t, g, "Amy")
		b := insertContact(t, g, "Bob")
		c := insertContact(t, g, "Cal")

		interaction, err := g.Insert(ctx, TableInteractions, Row{
			"type": "life_event",
			"date": FormatTimestamp(time.Now()),
		})
		require.NoError(t, err)
		iid := interaction["id"].(string)

		_, err = g.InsertMany(ctx, TableInteractionContacts, []Row{
			{"interaction_id": iid, "contact_id": a["id"]},
			{"interaction_id": iid, "contact_id": b["id"]},
		})
		require.NoError(t, err)

		parent, related, err := g.SelectRelated(ctx, InteractionContacts, iid)
		require.NoError(t, err)
		assert.Equal(t, iid, parent["id"])
		assert.ElementsMatch(t, []any{a["id"], b["id"]}, ids(related))

		_, related, err = g.SelectRelated(ctx, ContactInteractions, a["id"].(string))
		require.NoError(t, err)
		assert.Equal(t, []any{iid}, ids(related))

		_, related, err = g.SelectRelated(ctx, ContactInteractions, c["id"].(string))
		require.NoError(t, err)
		assert.Empty(t, related)

		_, _, err = g.SelectRelated(ctx, InteractionContacts, "missing")
		assert.True(t, errors.Is(err, ErrNotFound))

		n, err := g.DeleteWhere(ctx, TableInteractionContacts, Filter{"interaction_id": iid})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		_, related, err = g.SelectRelated(ctx, InteractionContacts, iid)
		require.NoError(t, err)
		assert.Empty(t, related)
	})
}

func TestGatewayLinkConstraints(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		a := insertContact(t, g, "Amy")
		interaction, err := g.Insert(ctx, TableInteractions, Row{"type": "life_event", "date": FormatTimestamp(time.Now())})
		require.NoError(t, err)
		iid := interaction["id"].(string)

		_, err = g.Insert(ctx, TableInteractionContacts, Row{"interaction_id": iid, "contact_id": "ghost"})
		assert.True(t, errors.Is(err, ErrReference), "got %v", err)

		_, err = g.Insert(ctx, TableInteractionContacts, Row{"interaction_id": iid, "contact_id": a["id"]})
		require.NoError(t, err)
		_, err = g.Insert(ctx, TableInteractionContacts, Row{"interaction_id": iid, "contact_id": a["id"]})
		assert.True(t, errors.Is(err, ErrConflict), "got %v", err)
	})
}

func TestGatewayInsertManyIsAllOrNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		ctx := context.Background()
		a := insertContact(t, g, "Amy")
		interaction, err := g.Insert(ctx, TableInteractions, Row{"type": "life_event", "date": FormatTimestamp(time.Now())})
		require.NoError(t, err)
		iid := interaction["id"].(string)

		_, err = g.InsertMany(ctx, TableInteractionContacts, []Row{
			{"interaction_id": iid, "contact_id": a["id"]},
			{"interaction_id": iid, "contact_id": "ghost"},
		})
		require.Error(t, err)

		rows, err := g.Select(ctx, TableInteractionContacts, Query{Filter: Filter{"interaction_id": iid}})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestGatewayDeleteWhereRequiresFilter(t *testing.T) {
	forEachBackend(t, func(t *testing.T, g Gateway) {
		_, err := g.DeleteWhere(context.Background(), TableContacts, nil)
		assert.Error(t, err)
	})
}

func TestParseTime(t *testing.T) {
	ts := time.Date(2024, 5, 10, 14, 30, 0, 123000, time.UTC)
	got, err := ParseTime(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))

	got, err = ParseTime("2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}

func TestTimestampsSortLexically(t *testing.T) {
	a := FormatTimestamp(time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC))
	b := FormatTimestamp(time.Date(2024, 1, 1, 0, 0, 5, 500000000, time.UTC))
	assert.Less(t, a, b)
}

func ids(rows []Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}
