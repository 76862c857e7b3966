// ABOUTME: Gateway implementation speaking PostgREST to a hosted relational backend
// ABOUTME: Translates selects, filters, ordering, and embedded joins into REST requests
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/rapport/db"
)

const relatedKey = "related"

// RESTGateway is safe for concurrent use.
type RESTGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*RESTGateway)

// WithHTTPClient replaces the default client, e.g. to add transport middleware.
func WithHTTPClient(c *http.Client) Option {
	return func(g *RESTGateway) { g.httpClient = c }
}

// WithTimeout bounds every request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *RESTGateway) { g.httpClient.Timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *RESTGateway) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewRESTGateway(baseURL, apiKey string, opts ...Option) *RESTGateway {
	g := &RESTGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *RESTGateway) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

func (g *RESTGateway) Select(ctx context.Context, table string, q db.Query) ([]db.Row, error) {
	if err := db.CheckColumns(table, q.Filter); err != nil {
		return nil, err
	}
	params, err := filterParams(q.Filter)
	if err != nil {
		return nil, err
	}
	params.Set("select", "*")
	if len(q.Order) > 0 {
		parts := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			if err := db.CheckColumns(table, map[string]any{o.Column: nil}); err != nil {
				return nil, err
			}
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			parts = append(parts, o.Column+"."+dir)
		}
		params.Set("order", strings.Join(parts, ","))
	}
	return g.do(ctx, http.MethodGet, table, params, nil)
}

func (g *RESTGateway) SelectOne(ctx context.Context, table, id string) (db.Row, error) {
	if err := requireEntityTable(table); err != nil {
		return nil, err
	}
	rows, err := g.do(ctx, http.MethodGet, table, idParams(id), nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, db.ErrNotFound
	}
	return rows[0], nil
}

func (g *RESTGateway) Insert(ctx context.Context, table string, row db.Row) (db.Row, error) {
	if err := db.CheckColumns(table, row); err != nil {
		return nil, err
	}
	rows, err := g.do(ctx, http.MethodPost, table, nil, row)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %s returned no row", table)
	}
	return rows[0], nil
}

// InsertMany sends every row in one request; PostgREST inserts them in one statement.
func (g *RESTGateway) InsertMany(ctx context.Context, table string, rows []db.Row) ([]db.Row, error) {
	if len(rows) == 0 {
		return []db.Row{}, nil
	}
	for _, r := range rows {
		if err := db.CheckColumns(table, r); err != nil {
			return nil, err
		}
	}
	return g.do(ctx, http.MethodPost, table, nil, rows)
}

func (g *RESTGateway) Update(ctx context.Context, table, id string, patch db.Row) (db.Row, error) {
	if err := requireEntityTable(table); err != nil {
		return nil, err
	}
	if err := db.CheckColumns(table, patch); err != nil {
		return nil, err
	}
	if _, ok := patch["id"]; ok {
		return nil, fmt.Errorf("id of %s cannot be changed", table)
	}
	body := make(db.Row, len(patch)+1)
	for k, v := range patch {
		if k != "created_at" {
			body[k] = v
		}
	}
	body["updated_at"] = db.FormatTimestamp(g.now())

	rows, err := g.do(ctx, http.MethodPatch, table, idParams(id), body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, db.ErrNotFound
	}
	return rows[0], nil
}

func (g *RESTGateway) Delete(ctx context.Context, table, id string) error {
	if err := requireEntityTable(table); err != nil {
		return err
	}
	rows, err := g.do(ctx, http.MethodDelete, table, idParams(id), nil)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (g *RESTGateway) DeleteWhere(ctx context.Context, table string, f db.Filter) (int, error) {
	if len(f) == 0 {
		return 0, fmt.Errorf("refusing to delete every row of %s", table)
	}
	if err := db.CheckColumns(table, f); err != nil {
		return 0, err
	}
	params, err := filterParams(f)
	if err != nil {
		return 0, err
	}
	rows, err := g.do(ctx, http.MethodDelete, table, params, nil)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// SelectRelated asks PostgREST to embed the related table through the named
// link table, e.g. select=*,related:contacts!interaction_contacts(*).
func (g *RESTGateway) SelectRelated(ctx context.Context, j db.Join, parentID string) (db.Row, []db.Row, error) {
	if err := requireEntityTable(j.Parent); err != nil {
		return nil, nil, err
	}
	if _, err := db.Columns(j.Table); err != nil {
		return nil, nil, err
	}
	if _, err := db.Columns(j.Related); err != nil {
		return nil, nil, err
	}

	params := url.Values{}
	params.Set("select", fmt.Sprintf("*,%s:%s!%s(*)", relatedKey, j.Related, j.Table))
	params.Set("id", "eq."+parentID)

	rows, err := g.do(ctx, http.MethodGet, j.Parent, params, nil)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, db.ErrNotFound
	}

	parent := rows[0]
	embedded, _ := parent[relatedKey].([]any)
	delete(parent, relatedKey)

	related := make([]db.Row, 0, len(embedded))
	for _, e := range embedded {
		if m, ok := e.(map[string]any); ok {
			related = append(related, db.Row(m))
		}
	}
	return parent, related, nil
}

func (g *RESTGateway) do(ctx context.Context, method, table string, params url.Values, body any) ([]db.Row, error) {
	if _, err := db.Columns(table); err != nil {
		return nil, err
	}

	endpoint := g.baseURL + "/rest/v1/" + table
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("rest request failed", "method", method, "table", table, "error", err)
		return nil, fmt.Errorf("failed to %s %s: %w", strings.ToLower(method), table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	g.logger.Debug("rest request",
		"method", method,
		"table", table,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []db.Row{}, nil
	}

	var rows []db.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return rows, nil
}

func requireEntityTable(table string) error {
	if _, err := db.Columns(table); err != nil {
		return err
	}
	if db.IsLinkTable(table) {
		return fmt.Errorf("link table %s has no id column", table)
	}
	return nil
}

func idParams(id string) url.Values {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("id", "eq."+id)
	return params
}

// filterParams renders equality filters; nil matches NULL.
func filterParams(f db.Filter) (url.Values, error) {
	params := url.Values{}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := f[k].(type) {
		case nil:
			params.Set(k, "is.null")
		case string:
			params.Set(k, "eq."+v)
		case bool, int, int64, float64:
			params.Set(k, fmt.Sprintf("eq.%v", v))
		default:
			return nil, fmt.Errorf("unsupported filter value for %s: %T", k, v)
		}
	}
	return params, nil
}
