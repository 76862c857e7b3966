// ABOUTME: Topic repository with contact associations kept in contact_topics
// ABOUTME: The owning contact is always part of a topic's linked set
package repository

import (
	"context"
	"slices"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

type TopicRepository struct {
	gw       db.Gateway
	rows     entityTable[models.Topic]
	contacts relation
}

func NewTopicRepository(gw db.Gateway) *TopicRepository {
	return &TopicRepository{
		gw: gw,
		rows: entityTable[models.Topic]{
			gw:     gw,
			table:  db.TableTopics,
			entity: "topic",
			order:  []db.Order{{Column: "name"}},
			decode: decodeTopic,
		},
		contacts: relation{gw: gw, join: db.TopicContacts},
	}
}

// FetchAll returns every topic ordered by name, each with its linked contacts.
func (r *TopicRepository) FetchAll(ctx context.Context) ([]models.Topic, error) {
	items, err := r.rows.all(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TopicRepository) FetchOne(ctx context.Context, id string) (models.Topic, error) {
	item, err := r.rows.one(ctx, id)
	if err != nil {
		return models.Topic{}, err
	}
	ids, err := r.contacts.ids(ctx, id)
	if err != nil {
		return models.Topic{}, err
	}
	item.ContactIDs = withOwner(item.ContactID, ids)
	return item, nil
}

func (r *TopicRepository) Create(ctx context.Context, in models.TopicInput) (models.Topic, error) {
	return r.CreateWithRelations(ctx, in, in.ContactIDs)
}

// CreateWithRelations inserts the topic and links the owner plus contactIDs.
func (r *TopicRepository) CreateWithRelations(ctx context.Context, in models.TopicInput, contactIDs []string) (models.Topic, error) {
	in.ContactIDs = contactIDs
	if err := in.Validate(); err != nil {
		return models.Topic{}, err
	}
	item, err := r.rows.insert(ctx, topicRow(in))
	if err != nil {
		return models.Topic{}, err
	}
	ids := withOwner(item.ContactID, contactIDs)
	if err := r.contacts.replace(ctx, item.ID, ids); err != nil {
		return models.Topic{}, err
	}
	item.ContactIDs = ids
	return item, nil
}

// Update patches the topic row. A new owner is linked if it was not already.
func (r *TopicRepository) Update(ctx context.Context, id string, p models.TopicPatch) (models.Topic, error) {
	if err := p.Validate(); err != nil {
		return models.Topic{}, err
	}
	item, err := r.rows.update(ctx, id, topicPatchRow(p))
	if err != nil {
		return models.Topic{}, err
	}
	ids, err := r.contacts.ids(ctx, id)
	if err != nil {
		return models.Topic{}, err
	}
	if !slices.Contains(ids, item.ContactID) {
		if err := r.contacts.add(ctx, id, []string{item.ContactID}); err != nil {
			return models.Topic{}, err
		}
		ids = append(ids, item.ContactID)
	}
	item.ContactIDs = withOwner(item.ContactID, ids)
	return item, nil
}

// UpdateRelations replaces the linked contacts. The owner is re-linked even
// when contactIDs leaves it out.
func (r *TopicRepository) UpdateRelations(ctx context.Context, id string, contactIDs []string) (models.Topic, error) {
	item, err := r.rows.one(ctx, id)
	if err != nil {
		return models.Topic{}, err
	}
	ids := withOwner(item.ContactID, contactIDs)
	if err := r.contacts.replace(ctx, id, ids); err != nil {
		return models.Topic{}, err
	}
	item.ContactIDs = ids
	return item, nil
}

func (r *TopicRepository) Delete(ctx context.Context, id string) error {
	if err := r.rows.exists(ctx, id); err != nil {
		return err
	}
	if err := r.contacts.clear(ctx, id); err != nil {
		return err
	}
	return r.rows.remove(ctx, id)
}

// ByContact returns every topic linked to contactID, ordered by name.
func (r *TopicRepository) ByContact(ctx context.Context, contactID string) ([]models.Topic, error) {
	_, rows, err := r.gw.SelectRelated(ctx, db.ContactTopics, contactID)
	if err != nil {
		return nil, classify("fetch", db.TableContacts, "contact", contactID, err)
	}
	items, err := r.rows.decodeAll("fetch", rows)
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, items); err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b models.Topic) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return items, nil
}

// GetWithContacts returns the topic and its linked contacts.
func (r *TopicRepository) GetWithContacts(ctx context.Context, id string) (models.Topic, []models.Contact, error) {
	parent, rows, err := r.gw.SelectRelated(ctx, db.TopicContacts, id)
	if err != nil {
		return models.Topic{}, nil, classify("fetch", db.TableTopics, "topic", id, err)
	}
	item, err := decodeTopic(parent)
	if err != nil {
		return models.Topic{}, nil, &RemoteError{Op: "fetch", Table: db.TableTopics, Err: err}
	}
	contacts := make([]models.Contact, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		c, err := decodeContact(row)
		if err != nil {
			return models.Topic{}, nil, &RemoteError{Op: "fetch", Table: db.TableContacts, Err: err}
		}
		contacts = append(contacts, c)
		ids = append(ids, c.ID)
	}
	item.ContactIDs = withOwner(item.ContactID, ids)
	return item, contacts, nil
}

// attach fills ContactIDs on items from one read of the link table.
func (r *TopicRepository) attach(ctx context.Context, items []models.Topic) error {
	links, err := r.contacts.index(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].ContactIDs = withOwner(items[i].ContactID, links[items[i].ID])
	}
	return nil
}

// withOwner returns ids with owner first and no duplicates.
func withOwner(owner string, ids []string) []string {
	return unique(append([]string{owner}, ids...))
}
