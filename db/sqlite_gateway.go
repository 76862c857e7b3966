// ABOUTME: Gateway implementation backed by a local SQLite database
// ABOUTME: Assigns ids and timestamps the way a hosted backend would and returns wire rows
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type SQLiteGateway struct {
	db  *sql.DB
	now func() time.Time
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func NewSQLiteGateway(database *sql.DB) *SQLiteGateway {
	return &SQLiteGateway{db: database, now: time.Now}
}

// OpenSQLiteGateway opens (and migrates) the database file at path.
func OpenSQLiteGateway(path string) (*SQLiteGateway, error) {
	database, err := OpenDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewSQLiteGateway(database), nil
}

func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

func (g *SQLiteGateway) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}
	where, args, err := whereClause(table, "", q.Filter)
	if err != nil {
		return nil, err
	}
	orderBy, err := orderClause(table, "", q.Order)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s%s", strings.Join(cols, ", "), table, where, orderBy)
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	return scanRows(rows, cols)
}

func (g *SQLiteGateway) SelectOne(ctx context.Context, table, id string) (Row, error) {
	if IsLinkTable(table) {
		return nil, fmt.Errorf("link table %s has no id column", table)
	}
	rows, err := g.Select(ctx, table, Query{Filter: Filter{"id": id}})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (g *SQLiteGateway) Insert(ctx context.Context, table string, row Row) (Row, error) {
	prepared, err := g.prepareInsert(table, row)
	if err != nil {
		return nil, err
	}
	if err := insertRow(ctx, g.db, table, prepared); err != nil {
		return nil, err
	}
	if IsLinkTable(table) {
		return prepared, nil
	}
	return g.SelectOne(ctx, table, prepared["id"].(string))
}

// InsertMany inserts all rows in one transaction: either every row lands or none do.
func (g *SQLiteGateway) InsertMany(ctx context.Context, table string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return []Row{}, nil
	}

	prepared := make([]Row, 0, len(rows))
	for _, r := range rows {
		p, err := g.prepareInsert(table, r)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range prepared {
		if err := insertRow(ctx, tx, table, p); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s insert: %w", table, err)
	}
	return prepared, nil
}

func (g *SQLiteGateway) Update(ctx context.Context, table, id string, patch Row) (Row, error) {
	if IsLinkTable(table) {
		return nil, fmt.Errorf("link table %s rows cannot be updated", table)
	}
	if err := CheckColumns(table, patch); err != nil {
		return nil, err
	}
	if _, ok := patch["id"]; ok {
		return nil, fmt.Errorf("id of %s cannot be changed", table)
	}

	values := cloneRow(patch)
	delete(values, "created_at")
	values["updated_at"] = FormatTimestamp(g.now())

	keys := sortedKeys(values)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = k + " = ?"
		args = append(args, values[k])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	result, err := g.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table, constraintError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return g.SelectOne(ctx, table, id)
}

func (g *SQLiteGateway) Delete(ctx context.Context, table, id string) error {
	if IsLinkTable(table) {
		return fmt.Errorf("link table %s has no id column", table)
	}
	if _, err := columnsFor(table); err != nil {
		return err
	}
	result, err := g.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWhere removes every row matching f. An empty filter is refused.
func (g *SQLiteGateway) DeleteWhere(ctx context.Context, table string, f Filter) (int, error) {
	if len(f) == 0 {
		return 0, fmt.Errorf("refusing to delete every row of %s", table)
	}
	where, args, err := whereClause(table, "", f)
	if err != nil {
		return 0, err
	}
	result, err := g.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s%s", table, where), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(n), nil
}

// SelectRelated returns the parent row and every related row linked to it,
// in link insertion order.
func (g *SQLiteGateway) SelectRelated(ctx context.Context, j Join, parentID string) (Row, []Row, error) {
	parent, err := g.SelectOne(ctx, j.Parent, parentID)
	if err != nil {
		return nil, nil, err
	}
	cols, err := columnsFor(j.Related)
	if err != nil {
		return nil, nil, err
	}
	if _, err := columnsFor(j.Table); err != nil {
		return nil, nil, err
	}

	qualified := make([]string, len(cols))
	for i, c := range cols {
		qualified[i] = "r." + c
	}
	query := fmt.Sprintf(
		"SELECT %s FROM %s r JOIN %s l ON l.%s = r.id WHERE l.%s = ? ORDER BY l.created_at, r.id",
		strings.Join(qualified, ", "), j.Related, j.Table, j.RelatedColumn, j.ParentColumn,
	)
	rows, err := g.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select %s for %s: %w", j.Related, j.Parent, err)
	}
	defer func() { _ = rows.Close() }()

	related, err := scanRows(rows, cols)
	if err != nil {
		return nil, nil, err
	}
	return parent, related, nil
}

// prepareInsert validates columns and stamps the server-assigned fields.
func (g *SQLiteGateway) prepareInsert(table string, row Row) (Row, error) {
	if err := CheckColumns(table, row); err != nil {
		return nil, err
	}
	out := cloneRow(row)
	now := FormatTimestamp(g.now())
	out["created_at"] = now
	if IsLinkTable(table) {
		return out, nil
	}
	if id, _ := out["id"].(string); id == "" {
		out["id"] = uuid.New().String()
	}
	out["updated_at"] = now
	return out, nil
}

func insertRow(ctx context.Context, ex execer, table string, row Row) error {
	keys := sortedKeys(row)
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = row[k]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(keys, ", "), strings.Join(placeholders, ", "))
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, constraintError(err))
	}
	return nil
}

// constraintError maps SQLite constraint failures onto the gateway sentinels.
func constraintError(err error) error {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	switch sqlErr.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", ErrReference, err)
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func whereClause(table, alias string, f Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	if err := CheckColumns(table, f); err != nil {
		return "", nil, err
	}
	keys := sortedKeys(f)
	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		col := alias + k
		if f[k] == nil {
			conds = append(conds, col+" IS NULL")
			continue
		}
		conds = append(conds, col+" = ?")
		args = append(args, f[k])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func orderClause(table, alias string, order []Order) (string, error) {
	if len(order) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(order))
	for _, o := range order {
		if !hasColumn(table, o.Column) {
			return "", fmt.Errorf("unknown column %s.%s", table, o.Column)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, alias+o.Column+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

// scanRows reads every row into wire form. TEXT may come back as []byte.
func scanRows(rows *sql.Rows, cols []string) ([]Row, error) {
	out := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				r[c] = string(b)
				continue
			}
			r[c] = values[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
