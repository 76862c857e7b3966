// ABOUTME: Gateway implementation over an embedded BadgerDB key-value store
// ABOUTME: Stores JSON rows under table-prefixed keys; also serves as the in-memory test backend
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/oklog/ulid/v2"
)

// BadgerGateway keeps entity rows at "<table>/<ulid>" so key order is
// insertion order, and link rows at "<table>/<left>/<right>".
type BadgerGateway struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerGateway opens a persistent store in dir.
func NewBadgerGateway(dir string) (*BadgerGateway, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil)
	return openBadger(opts)
}

// NewMemoryGateway opens a store that lives only as long as the process.
func NewMemoryGateway() (*BadgerGateway, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerGateway, error) {
	database, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerGateway{db: database, now: time.Now}, nil
}

func (g *BadgerGateway) Close() error {
	return g.db.Close()
}

// Reset drops every row in every table.
func (g *BadgerGateway) Reset() error {
	return g.db.DropAll()
}

func (g *BadgerGateway) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if _, err := columnsFor(table); err != nil {
		return nil, err
	}
	if err := CheckColumns(table, q.Filter); err != nil {
		return nil, err
	}
	for _, o := range q.Order {
		if !hasColumn(table, o.Column) {
			return nil, fmt.Errorf("unknown column %s.%s", table, o.Column)
		}
	}

	var out []Row
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanTable(txn, table, q.Filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", table, err)
	}

	sortRows(out, q.Order)
	return out, nil
}

func (g *BadgerGateway) SelectOne(ctx context.Context, table, id string) (Row, error) {
	if IsLinkTable(table) {
		return nil, fmt.Errorf("link table %s has no id column", table)
	}
	if _, err := columnsFor(table); err != nil {
		return nil, err
	}
	var row Row
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		row, err = getRow(txn, table, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (g *BadgerGateway) Insert(ctx context.Context, table string, row Row) (Row, error) {
	rows, err := g.InsertMany(ctx, table, []Row{row})
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// InsertMany writes all rows in one transaction.
func (g *BadgerGateway) InsertMany(ctx context.Context, table string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return []Row{}, nil
	}
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}

	now := FormatTimestamp(g.now())
	prepared := make([]Row, 0, len(rows))
	for _, r := range rows {
		if err := CheckColumns(table, r); err != nil {
			return nil, err
		}
		p := make(Row, len(cols))
		for _, c := range cols {
			p[c] = nil
		}
		for k, v := range r {
			p[k] = v
		}
		p["created_at"] = now
		if !IsLinkTable(table) {
			if id, _ := p["id"].(string); id == "" {
				p["id"] = ulid.Make().String()
			}
			p["updated_at"] = now
		}
		prepared = append(prepared, p)
	}

	err = g.db.Update(func(txn *badger.Txn) error {
		for _, p := range prepared {
			if err := checkReferences(txn, table, p); err != nil {
				return err
			}
			key := rowKey(table, p)
			if _, err := txn.Get(key); err == nil {
				return fmt.Errorf("%w: %s", ErrConflict, key)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := putRow(txn, key, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return prepared, nil
}

func (g *BadgerGateway) Update(ctx context.Context, table, id string, patch Row) (Row, error) {
	if IsLinkTable(table) {
		return nil, fmt.Errorf("link table %s rows cannot be updated", table)
	}
	if err := CheckColumns(table, patch); err != nil {
		return nil, err
	}
	if _, ok := patch["id"]; ok {
		return nil, fmt.Errorf("id of %s cannot be changed", table)
	}

	var updated Row
	err := g.db.Update(func(txn *badger.Txn) error {
		row, err := getRow(txn, table, id)
		if err != nil {
			return err
		}
		if err := checkReferences(txn, table, patch); err != nil {
			return err
		}
		for k, v := range patch {
			if k == "created_at" {
				continue
			}
			row[k] = v
		}
		row["updated_at"] = FormatTimestamp(g.now())
		updated = row
		return putRow(txn, rowKey(table, row), row)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table, err)
	}
	return updated, nil
}

func (g *BadgerGateway) Delete(ctx context.Context, table, id string) error {
	if IsLinkTable(table) {
		return fmt.Errorf("link table %s has no id column", table)
	}
	if _, err := columnsFor(table); err != nil {
		return err
	}
	return g.db.Update(func(txn *badger.Txn) error {
		key := []byte(table + "/" + id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (g *BadgerGateway) DeleteWhere(ctx context.Context, table string, f Filter) (int, error) {
	if len(f) == 0 {
		return 0, fmt.Errorf("refusing to delete every row of %s", table)
	}
	if err := CheckColumns(table, f); err != nil {
		return 0, err
	}

	deleted := 0
	err := g.db.Update(func(txn *badger.Txn) error {
		rows, err := scanTable(txn, table, f)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := txn.Delete(rowKey(table, r)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return deleted, nil
}

func (g *BadgerGateway) SelectRelated(ctx context.Context, j Join, parentID string) (Row, []Row, error) {
	if _, err := columnsFor(j.Table); err != nil {
		return nil, nil, err
	}
	var parent Row
	var related []Row
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		parent, err = getRow(txn, j.Parent, parentID)
		if err != nil {
			return err
		}
		links, err := scanTable(txn, j.Table, Filter{j.ParentColumn: parentID})
		if err != nil {
			return err
		}
		sort.SliceStable(links, func(a, b int) bool {
			ca, cb := fmt.Sprint(links[a]["created_at"]), fmt.Sprint(links[b]["created_at"])
			if ca != cb {
				return ca < cb
			}
			return fmt.Sprint(links[a][j.RelatedColumn]) < fmt.Sprint(links[b][j.RelatedColumn])
		})
		related = make([]Row, 0, len(links))
		for _, l := range links {
			id, _ := l[j.RelatedColumn].(string)
			r, err := getRow(txn, j.Related, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			related = append(related, r)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return parent, related, nil
}

func rowKey(table string, r Row) []byte {
	if IsLinkTable(table) {
		cols := tableColumns[table]
		return []byte(fmt.Sprintf("%s/%v/%v", table, r[cols[0]], r[cols[1]]))
	}
	return []byte(fmt.Sprintf("%s/%v", table, r["id"]))
}

func getRow(txn *badger.Txn, table, id string) (Row, error) {
	item, err := txn.Get([]byte(table + "/" + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
	}
	return row, nil
}

func putRow(txn *badger.Txn, key []byte, r Row) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	return txn.Set(key, data)
}

// scanTable decodes every row of table matching f, in key order.
func scanTable(txn *badger.Txn, table string, f Filter) ([]Row, error) {
	prefix := []byte(table + "/")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	out := []Row{}
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		data, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var row Row
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
		}
		if matches(row, f) {
			out = append(out, row)
		}
	}
	return out, nil
}

func checkReferences(txn *badger.Txn, table string, r Row) error {
	for col, target := range foreignKeys[table] {
		v, ok := r[col]
		if !ok || v == nil {
			continue
		}
		id, _ := v.(string)
		if id == "" {
			continue
		}
		if _, err := txn.Get([]byte(target + "/" + id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s.%s=%s", ErrReference, table, col, id)
			}
			return err
		}
	}
	return nil
}

func matches(r Row, f Filter) bool {
	for k, want := range f {
		if !valuesEqual(r[k], want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// sortRows orders rows the way SQLite would: NULLs first on ascending sorts.
func sortRows(rows []Row, order []Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compareValues(rows[i][o.Column], rows[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	fa, aNum := a.(float64)
	fb, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
