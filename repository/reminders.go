// ABOUTME: Reminder repository over the remote store gateway
// ABOUTME: Adds per-contact and per-status selections and the contact join
package repository

import (
	"context"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

type ReminderRepository struct {
	rows     entityTable[models.Reminder]
	contacts entityTable[models.Contact]
}

func NewReminderRepository(gw db.Gateway) *ReminderRepository {
	return &ReminderRepository{
		rows: entityTable[models.Reminder]{
			gw:     gw,
			table:  db.TableReminders,
			entity: "reminder",
			order:  []db.Order{{Column: "date"}, {Column: "time"}},
			decode: decodeReminder,
		},
		contacts: entityTable[models.Contact]{
			gw:     gw,
			table:  db.TableContacts,
			entity: "contact",
			decode: decodeContact,
		},
	}
}

// FetchAll returns every reminder, soonest first.
func (r *ReminderRepository) FetchAll(ctx context.Context) ([]models.Reminder, error) {
	return r.rows.all(ctx, nil)
}

func (r *ReminderRepository) FetchOne(ctx context.Context, id string) (models.Reminder, error) {
	return r.rows.one(ctx, id)
}

// Create inserts a reminder, starting it pending with no recurrence unless set.
func (r *ReminderRepository) Create(ctx context.Context, in models.ReminderInput) (models.Reminder, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return models.Reminder{}, err
	}
	return r.rows.insert(ctx, reminderRow(in))
}

// Update applies any status change the patch names; no transition is rejected.
func (r *ReminderRepository) Update(ctx context.Context, id string, p models.ReminderPatch) (models.Reminder, error) {
	if err := p.Validate(); err != nil {
		return models.Reminder{}, err
	}
	return r.rows.update(ctx, id, reminderPatchRow(p))
}

func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	return r.rows.remove(ctx, id)
}

func (r *ReminderRepository) ByContact(ctx context.Context, contactID string) ([]models.Reminder, error) {
	return r.rows.all(ctx, db.Filter{"contact_id": contactID})
}

func (r *ReminderRepository) ByStatus(ctx context.Context, status models.ReminderStatus) ([]models.Reminder, error) {
	return r.rows.all(ctx, db.Filter{"status": string(status)})
}

// GetWithContact returns the reminder and the contact it belongs to.
func (r *ReminderRepository) GetWithContact(ctx context.Context, id string) (models.Reminder, models.Contact, error) {
	rem, err := r.rows.one(ctx, id)
	if err != nil {
		return models.Reminder{}, models.Contact{}, err
	}
	c, err := r.contacts.one(ctx, rem.ContactID)
	if err != nil {
		return models.Reminder{}, models.Contact{}, err
	}
	return rem, c, nil
}
