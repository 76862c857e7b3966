// ABOUTME: Contact repository over the remote store gateway
// ABOUTME: Handles CRUD, joined reads, and the cascade applied on contact deletion
package repository

import (
	"context"
	"sort"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

type ContactRepository struct {
	gw     db.Gateway
	rows   entityTable[models.Contact]
	topics *TopicRepository
	inter  *InteractionRepository
	rems   *ReminderRepository
}

func NewContactRepository(gw db.Gateway) *ContactRepository {
	return &ContactRepository{
		gw: gw,
		rows: entityTable[models.Contact]{
			gw:     gw,
			table:  db.TableContacts,
			entity: "contact",
			order:  []db.Order{{Column: "name"}},
			decode: decodeContact,
		},
		topics: NewTopicRepository(gw),
		inter:  NewInteractionRepository(gw),
		rems:   NewReminderRepository(gw),
	}
}

// FetchAll returns every contact ordered by name.
func (r *ContactRepository) FetchAll(ctx context.Context) ([]models.Contact, error) {
	return r.rows.all(ctx, nil)
}

func (r *ContactRepository) FetchOne(ctx context.Context, id string) (models.Contact, error) {
	return r.rows.one(ctx, id)
}

func (r *ContactRepository) Create(ctx context.Context, in models.ContactInput) (models.Contact, error) {
	if err := in.Validate(); err != nil {
		return models.Contact{}, err
	}
	return r.rows.insert(ctx, contactRow(in))
}

func (r *ContactRepository) Update(ctx context.Context, id string, p models.ContactPatch) (models.Contact, error) {
	if err := p.Validate(); err != nil {
		return models.Contact{}, err
	}
	return r.rows.update(ctx, id, contactPatchRow(p))
}

// Delete removes a contact together with everything that only makes sense
// for that contact: its reminders, gifts, owned topics, and every link row
// naming it. Interactions survive with the contact dropped from their set.
// Each step is its own gateway call; a failure part way leaves earlier steps applied.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	if err := r.rows.exists(ctx, id); err != nil {
		return err
	}

	if _, err := r.gw.DeleteWhere(ctx, db.TableInteractionContacts, db.Filter{"contact_id": id}); err != nil {
		return &RemoteError{Op: "delete", Table: db.TableInteractionContacts, Err: err}
	}
	if _, err := r.gw.DeleteWhere(ctx, db.TableContactTopics, db.Filter{"contact_id": id}); err != nil {
		return &RemoteError{Op: "delete", Table: db.TableContactTopics, Err: err}
	}

	owned, err := r.gw.Select(ctx, db.TableTopics, db.Query{Filter: db.Filter{"contact_id": id}})
	if err != nil {
		return &RemoteError{Op: "fetch", Table: db.TableTopics, Err: err}
	}
	for _, t := range owned {
		if err := r.topics.Delete(ctx, text(t, "id")); err != nil && !IsNotFound(err) {
			return err
		}
	}

	for _, table := range []string{db.TableReminders, db.TableGifts} {
		if _, err := r.gw.DeleteWhere(ctx, table, db.Filter{"contact_id": id}); err != nil {
			return &RemoteError{Op: "delete", Table: table, Err: err}
		}
	}

	return r.rows.remove(ctx, id)
}

// GetWithTopics returns the contact and every topic linked to it.
func (r *ContactRepository) GetWithTopics(ctx context.Context, id string) (models.Contact, []models.Topic, error) {
	parent, rows, err := r.gw.SelectRelated(ctx, db.ContactTopics, id)
	if err != nil {
		return models.Contact{}, nil, classify("fetch", db.TableContacts, "contact", id, err)
	}
	c, err := decodeContact(parent)
	if err != nil {
		return models.Contact{}, nil, &RemoteError{Op: "fetch", Table: db.TableContacts, Err: err}
	}
	topics, err := r.topics.rows.decodeAll("fetch", rows)
	if err != nil {
		return models.Contact{}, nil, err
	}
	if err := r.topics.attach(ctx, topics); err != nil {
		return models.Contact{}, nil, err
	}
	return c, topics, nil
}

// GetWithInteractions returns the contact and every interaction it took part in.
func (r *ContactRepository) GetWithInteractions(ctx context.Context, id string) (models.Contact, []models.Interaction, error) {
	parent, rows, err := r.gw.SelectRelated(ctx, db.ContactInteractions, id)
	if err != nil {
		return models.Contact{}, nil, classify("fetch", db.TableContacts, "contact", id, err)
	}
	c, err := decodeContact(parent)
	if err != nil {
		return models.Contact{}, nil, &RemoteError{Op: "fetch", Table: db.TableContacts, Err: err}
	}
	interactions, err := r.inter.rows.decodeAll("fetch", rows)
	if err != nil {
		return models.Contact{}, nil, err
	}
	for i := range interactions {
		ids, err := r.inter.contacts.ids(ctx, interactions[i].ID)
		if err != nil {
			return models.Contact{}, nil, err
		}
		interactions[i].ContactIDs = ids
	}
	sort.SliceStable(interactions, func(a, b int) bool {
		return interactions[a].Date.After(interactions[b].Date)
	})
	return c, interactions, nil
}

// GetWithReminders returns the contact and its reminders ordered by date.
func (r *ContactRepository) GetWithReminders(ctx context.Context, id string) (models.Contact, []models.Reminder, error) {
	c, err := r.rows.one(ctx, id)
	if err != nil {
		return models.Contact{}, nil, err
	}
	reminders, err := r.rems.ByContact(ctx, id)
	if err != nil {
		return models.Contact{}, nil, err
	}
	return c, reminders, nil
}
