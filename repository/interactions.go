// ABOUTME: Interaction repository with contact associations kept in interaction_contacts
// ABOUTME: Contact sets are written with replace-all semantics and attached on every read
package repository

import (
	"context"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

type InteractionRepository struct {
	gw       db.Gateway
	rows     entityTable[models.Interaction]
	contacts relation
}

func NewInteractionRepository(gw db.Gateway) *InteractionRepository {
	return &InteractionRepository{
		gw: gw,
		rows: entityTable[models.Interaction]{
			gw:     gw,
			table:  db.TableInteractions,
			entity: "interaction",
			order:  []db.Order{{Column: "date", Desc: true}},
			decode: decodeInteraction,
		},
		contacts: relation{gw: gw, join: db.InteractionContacts},
	}
}

// FetchAll returns every interaction, newest first, each with its contact ids.
func (r *InteractionRepository) FetchAll(ctx context.Context) ([]models.Interaction, error) {
	items, err := r.rows.all(ctx, nil)
	if err != nil {
		return nil, err
	}
	links, err := r.contacts.index(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if ids, ok := links[items[i].ID]; ok {
			items[i].ContactIDs = ids
		}
	}
	return items, nil
}

func (r *InteractionRepository) FetchOne(ctx context.Context, id string) (models.Interaction, error) {
	item, err := r.rows.one(ctx, id)
	if err != nil {
		return models.Interaction{}, err
	}
	if item.ContactIDs, err = r.contacts.ids(ctx, id); err != nil {
		return models.Interaction{}, err
	}
	return item, nil
}

// Create inserts the interaction and links in.ContactIDs.
func (r *InteractionRepository) Create(ctx context.Context, in models.InteractionInput) (models.Interaction, error) {
	return r.CreateWithRelations(ctx, in, in.ContactIDs)
}

// CreateWithRelations inserts the interaction, then links contactIDs. If the
// link insert fails the interaction row remains with no contacts.
func (r *InteractionRepository) CreateWithRelations(ctx context.Context, in models.InteractionInput, contactIDs []string) (models.Interaction, error) {
	in.ContactIDs = contactIDs
	if err := in.Validate(); err != nil {
		return models.Interaction{}, err
	}
	item, err := r.rows.insert(ctx, interactionRow(in))
	if err != nil {
		return models.Interaction{}, err
	}
	if err := r.contacts.replace(ctx, item.ID, contactIDs); err != nil {
		return models.Interaction{}, err
	}
	item.ContactIDs = unique(contactIDs)
	return item, nil
}

// Update patches the interaction row; the contact set is unchanged.
func (r *InteractionRepository) Update(ctx context.Context, id string, p models.InteractionPatch) (models.Interaction, error) {
	if err := p.Validate(); err != nil {
		return models.Interaction{}, err
	}
	item, err := r.rows.update(ctx, id, interactionPatchRow(p))
	if err != nil {
		return models.Interaction{}, err
	}
	if item.ContactIDs, err = r.contacts.ids(ctx, id); err != nil {
		return models.Interaction{}, err
	}
	return item, nil
}

// UpdateRelations replaces the whole contact set of an interaction.
func (r *InteractionRepository) UpdateRelations(ctx context.Context, id string, contactIDs []string) (models.Interaction, error) {
	item, err := r.rows.one(ctx, id)
	if err != nil {
		return models.Interaction{}, err
	}
	if err := r.contacts.replace(ctx, id, contactIDs); err != nil {
		return models.Interaction{}, err
	}
	item.ContactIDs = unique(contactIDs)
	return item, nil
}

// Delete removes the interaction, its contact links, and any reminder
// back-references to it.
func (r *InteractionRepository) Delete(ctx context.Context, id string) error {
	if err := r.rows.exists(ctx, id); err != nil {
		return err
	}
	if err := r.contacts.clear(ctx, id); err != nil {
		return err
	}
	linked, err := r.gw.Select(ctx, db.TableReminders, db.Query{Filter: db.Filter{"interaction_id": id}})
	if err != nil {
		return &RemoteError{Op: "fetch", Table: db.TableReminders, Err: err}
	}
	for _, rem := range linked {
		if _, err := r.gw.Update(ctx, db.TableReminders, text(rem, "id"), db.Row{"interaction_id": nil}); err != nil {
			return &RemoteError{Op: "update", Table: db.TableReminders, Err: err}
		}
	}
	return r.rows.remove(ctx, id)
}

// ContactIDs lists the contacts associated with an interaction.
func (r *InteractionRepository) ContactIDs(ctx context.Context, id string) ([]string, error) {
	return r.contacts.ids(ctx, id)
}

// GetWithContacts returns the interaction and its associated contacts.
func (r *InteractionRepository) GetWithContacts(ctx context.Context, id string) (models.Interaction, []models.Contact, error) {
	parent, rows, err := r.gw.SelectRelated(ctx, db.InteractionContacts, id)
	if err != nil {
		return models.Interaction{}, nil, classify("fetch", db.TableInteractions, "interaction", id, err)
	}
	item, err := decodeInteraction(parent)
	if err != nil {
		return models.Interaction{}, nil, &RemoteError{Op: "fetch", Table: db.TableInteractions, Err: err}
	}
	contacts := make([]models.Contact, 0, len(rows))
	for _, row := range rows {
		c, err := decodeContact(row)
		if err != nil {
			return models.Interaction{}, nil, &RemoteError{Op: "fetch", Table: db.TableContacts, Err: err}
		}
		contacts = append(contacts, c)
		item.ContactIDs = append(item.ContactIDs, c.ID)
	}
	return item, contacts, nil
}
