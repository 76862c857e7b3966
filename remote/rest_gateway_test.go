// ABOUTME: Tests for the PostgREST gateway against an httptest server
// ABOUTME: Checks request shape, header auth, error mapping, and embedded joins
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rapport/db"
)

type recorded struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   []byte
}

func newTestServer(t *testing.T, status int, response string) (*RESTGateway, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k, v := range r.URL.Query() {
			q[k] = v[0]
		}
		calls = append(calls, recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  q,
			header: r.Header.Clone(),
			body:   body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	g := NewRESTGateway(srv.URL+"/", "test-key", WithTimeout(5*time.Second))
	return g, &calls
}

func TestSelectBuildsPostgRESTQuery(t *testing.T) {
	g, calls := newTestServer(t, http.StatusOK, `[{"id":"c1","name":"Amy"}]`)

	rows, err := g.Select(context.Background(), db.TableContacts, db.Query{
		Filter: db.Filter{"relationship_type": "friend", "email": nil},
		Order:  []db.Order{{Column: "name"}, {Column: "created_at", Desc: true}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Amy", rows[0]["name"])

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "/rest/v1/contacts", c.path)
	assert.Equal(t, "eq.friend", c.query["relationship_type"])
	assert.Equal(t, "is.null", c.query["email"])
	assert.Equal(t, "name.asc,created_at.desc", c.query["order"])
	assert.Equal(t, "*", c.query["select"])
	assert.Equal(t, "test-key", c.header.Get("apikey"))
	assert.Equal(t, "Bearer test-key", c.header.Get("Authorization"))
}

func TestSelectOneNotFound(t *testing.T) {
	g, calls := newTestServer(t, http.StatusOK, `[]`)

	_, err := g.SelectOne(context.Background(), db.TableContacts, "missing")
	assert.True(t, errors.Is(err, db.ErrNotFound))
	assert.Equal(t, "eq.missing", (*calls)[0].query["id"])
}

func TestInsertRequestsRepresentation(t *testing.T) {
	g, calls := newTestServer(t, http.StatusCreated, `[{"id":"c1","name":"Ada","created_at":"2024-01-01T00:00:00.000000Z"}]`)

	row, err := g.Insert(context.Background(), db.TableContacts, db.Row{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "c1", row["id"])

	c := (*calls)[0]
	assert.Equal(t, http.MethodPost, c.method)
	assert.Equal(t, "return=representation", c.header.Get("Prefer"))
	assert.Equal(t, "application/json", c.header.Get("Content-Type"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(c.body, &sent))
	assert.Equal(t, "Ada", sent["name"])
}

func TestInsertManySendsOneRequest(t *testing.T) {
	g, calls := newTestServer(t, http.StatusCreated, `[{"interaction_id":"i1","contact_id":"a"},{"interaction_id":"i1","contact_id":"b"}]`)

	rows, err := g.InsertMany(context.Background(), db.TableInteractionContacts, []db.Row{
		{"interaction_id": "i1", "contact_id": "a"},
		{"interaction_id": "i1", "contact_id": "b"},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	require.Len(t, *calls, 1)

	var sent []map[string]any
	require.NoError(t, json.Unmarshal((*calls)[0].body, &sent))
	assert.Len(t, sent, 2)
}

func TestUpdateStampsUpdatedAt(t *testing.T) {
	g, calls := newTestServer(t, http.StatusOK, `[{"id":"c1","name":"Ada Lovelace"}]`)
	fixed := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	_, err := g.Update(context.Background(), db.TableContacts, "c1", db.Row{"name": "Ada Lovelace"})
	require.NoError(t, err)

	c := (*calls)[0]
	assert.Equal(t, http.MethodPatch, c.method)
	assert.Equal(t, "eq.c1", c.query["id"])

	var sent map[string]any
	require.NoError(t, json.Unmarshal(c.body, &sent))
	assert.Equal(t, db.FormatTimestamp(fixed), sent["updated_at"])
}

func TestUpdateAndDeleteMissingRow(t *testing.T) {
	g, _ := newTestServer(t, http.StatusOK, `[]`)
	ctx := context.Background()

	_, err := g.Update(ctx, db.TableContacts, "missing", db.Row{"name": "x"})
	assert.True(t, errors.Is(err, db.ErrNotFound))

	err = g.Delete(ctx, db.TableContacts, "missing")
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestDeleteWhereCountsRows(t *testing.T) {
	g, calls := newTestServer(t, http.StatusOK, `[{"interaction_id":"i1","contact_id":"a"},{"interaction_id":"i1","contact_id":"b"}]`)

	n, err := g.DeleteWhere(context.Background(), db.TableInteractionContacts, db.Filter{"interaction_id": "i1"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "eq.i1", (*calls)[0].query["interaction_id"])

	_, err = g.DeleteWhere(context.Background(), db.TableInteractionContacts, nil)
	assert.Error(t, err)
}

func TestSelectRelatedParsesEmbeddedRows(t *testing.T) {
	g, calls := newTestServer(t, http.StatusOK,
		`[{"id":"i1","type":"life_event","related":[{"id":"a","name":"Amy"},{"id":"b","name":"Bob"}]}]`)

	parent, related, err := g.SelectRelated(context.Background(), db.InteractionContacts, "i1")
	require.NoError(t, err)
	assert.Equal(t, "i1", parent["id"])
	_, hasEmbedded := parent["related"]
	assert.False(t, hasEmbedded)
	require.Len(t, related, 2)
	assert.Equal(t, "Bob", related[1]["name"])

	assert.Equal(t, "*,related:contacts!interaction_contacts(*)", (*calls)[0].query["select"])
	assert.Equal(t, "/rest/v1/interactions", (*calls)[0].path)
}

func TestAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{"foreign key", http.StatusConflict, `{"code":"23503","message":"violates foreign key constraint"}`, db.ErrReference},
		{"duplicate", http.StatusConflict, `{"code":"23505","message":"duplicate key value"}`, db.ErrConflict},
		{"unknown table", http.StatusNotFound, `{"code":"PGRST205","message":"Could not find the table"}`, db.ErrUnknownTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestServer(t, tt.status, tt.body)
			_, err := g.Select(context.Background(), db.TableContacts, db.Query{})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}
}

func TestAPIErrorPlainBody(t *testing.T) {
	g, _ := newTestServer(t, http.StatusInternalServerError, ``)
	_, err := g.Select(context.Background(), db.TableContacts, db.Query{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Internal Server Error", apiErr.Message)
	assert.Nil(t, apiErr.Unwrap())
}

func TestRejectsUnknownTableWithoutRequest(t *testing.T) {
	g, calls := newTestServer(t, http.StatusOK, `[]`)
	_, err := g.Select(context.Background(), "widgets", db.Query{})
	assert.True(t, errors.Is(err, db.ErrUnknownTable))
	assert.Empty(t, *calls)
}
