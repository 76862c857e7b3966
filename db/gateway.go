// ABOUTME: Remote store gateway contract shared by every storage backend
// ABOUTME: Defines rows, queries, join descriptors, table registry, and sentinel errors
package db

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("row not found")
	ErrUnknownTable = errors.New("unknown table")
	ErrConflict     = errors.New("row already exists")
	ErrReference    = errors.New("referenced row does not exist")
)

// Row is a single record in wire form: snake_case keys, timestamps as
// ISO-8601 strings, nullable values as nil.
type Row map[string]any

// Filter matches rows whose columns equal every given value.
type Filter map[string]any

// Order sorts a selection by one column.
type Order struct {
	Column string
	Desc   bool
}

type Query struct {
	Filter Filter
	Order  []Order
}

// Join describes a many-to-many relation stored in a link table.
type Join struct {
	Parent        string // parent table, e.g. "interactions"
	Table         string // link table, e.g. "interaction_contacts"
	ParentColumn  string // link column pointing at the parent
	Related       string // related table, e.g. "contacts"
	RelatedColumn string // link column pointing at the related row
}

// Gateway is the request/response store every repository is written against.
// Implementations must be safe for concurrent use.
type Gateway interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	SelectOne(ctx context.Context, table, id string) (Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	InsertMany(ctx context.Context, table string, rows []Row) ([]Row, error)
	Update(ctx context.Context, table, id string, patch Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
	DeleteWhere(ctx context.Context, table string, f Filter) (int, error)
	SelectRelated(ctx context.Context, j Join, parentID string) (Row, []Row, error)
	Close() error
}

const (
	TableContacts            = "contacts"
	TableInteractions        = "interactions"
	TableInteractionContacts = "interaction_contacts"
	TableTopics              = "topics"
	TableContactTopics       = "contact_topics"
	TableReminders           = "reminders"
	TableGifts               = "gifts"
)

var (
	InteractionContacts = Join{
		Parent:        TableInteractions,
		Table:         TableInteractionContacts,
		ParentColumn:  "interaction_id",
		Related:       TableContacts,
		RelatedColumn: "contact_id",
	}
	ContactInteractions = InteractionContacts.Reverse()

	TopicContacts = Join{
		Parent:        TableTopics,
		Table:         TableContactTopics,
		ParentColumn:  "topic_id",
		Related:       TableContacts,
		RelatedColumn: "contact_id",
	}
	ContactTopics = TopicContacts.Reverse()
)

// Reverse walks the same link table from the other side.
func (j Join) Reverse() Join {
	return Join{
		Parent:        j.Related,
		Table:         j.Table,
		ParentColumn:  j.RelatedColumn,
		Related:       j.Parent,
		RelatedColumn: j.ParentColumn,
	}
}

// tableColumns lists the columns of every table. Link tables have no id
// and carry only created_at.
var tableColumns = map[string][]string{
	TableContacts: {
		"id", "name", "email", "phone", "relationship_type", "birthday",
		"profile_picture", "created_at", "updated_at",
	},
	TableInteractions: {
		"id", "type", "date", "notes", "location", "created_at", "updated_at",
	},
	TableInteractionContacts: {
		"interaction_id", "contact_id", "created_at",
	},
	TableTopics: {
		"id", "contact_id", "name", "category", "last_discussed", "notes", "created_at", "updated_at",
	},
	TableContactTopics: {
		"contact_id", "topic_id", "created_at",
	},
	TableReminders: {
		"id", "title", "description", "type", "date", "time", "contact_id", "status",
		"recurrence", "interaction_id", "snoozed_until", "created_at", "updated_at",
	},
	TableGifts: {
		"id", "name", "description", "price", "status", "reaction", "contact_id",
		"occasion", "given_date", "created_at", "updated_at",
	},
}

// foreignKeys maps table -> column -> referenced table.
var foreignKeys = map[string]map[string]string{
	TableInteractionContacts: {"interaction_id": TableInteractions, "contact_id": TableContacts},
	TableContactTopics:       {"contact_id": TableContacts, "topic_id": TableTopics},
	TableTopics:              {"contact_id": TableContacts},
	TableReminders:           {"contact_id": TableContacts, "interaction_id": TableInteractions},
	TableGifts:               {"contact_id": TableContacts},
}

// Tables returns every known table name.
func Tables() []string {
	names := make([]string, 0, len(tableColumns))
	for name := range tableColumns {
		names = append(names, name)
	}
	return names
}

// IsLinkTable reports whether table is a join table without an id column.
func IsLinkTable(table string) bool {
	return table == TableInteractionContacts || table == TableContactTopics
}

func columnsFor(table string) ([]string, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return cols, nil
}

// Columns returns the column list of table.
func Columns(table string) ([]string, error) {
	cols, err := columnsFor(table)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), cols...), nil
}

func hasColumn(table, column string) bool {
	for _, c := range tableColumns[table] {
		if c == column {
			return true
		}
	}
	return false
}

// CheckColumns rejects keys that are not columns of table so a typo never
// turns into a silently ignored field.
func CheckColumns(table string, keys map[string]any) error {
	if _, err := columnsFor(table); err != nil {
		return err
	}
	for k := range keys {
		if !hasColumn(table, k) {
			return fmt.Errorf("unknown column %s.%s", table, k)
		}
	}
	return nil
}

// Wire formats. Timestamps use a fixed-width UTC layout so TEXT ordering
// matches chronological ordering; dates carry no time of day.
const (
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
	DateLayout      = "2006-01-02"
)

// FormatTimestamp renders an instant in wire form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatDate renders the calendar day of t in wire form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseTime accepts either wire form: a full ISO-8601 timestamp or a bare date.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", s); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, s)
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
