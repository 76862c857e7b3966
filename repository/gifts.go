// ABOUTME: Gift repository over the remote store gateway
// ABOUTME: Gifts start as ideas and belong to exactly one contact
package repository

import (
	"context"

	"github.com/harperreed/rapport/db"
	"github.com/harperreed/rapport/models"
)

type GiftRepository struct {
	rows entityTable[models.Gift]
}

func NewGiftRepository(gw db.Gateway) *GiftRepository {
	return &GiftRepository{
		rows: entityTable[models.Gift]{
			gw:     gw,
			table:  db.TableGifts,
			entity: "gift",
			order:  []db.Order{{Column: "name"}},
			decode: decodeGift,
		},
	}
}

func (r *GiftRepository) FetchAll(ctx context.Context) ([]models.Gift, error) {
	return r.rows.all(ctx, nil)
}

func (r *GiftRepository) FetchOne(ctx context.Context, id string) (models.Gift, error) {
	return r.rows.one(ctx, id)
}

func (r *GiftRepository) Create(ctx context.Context, in models.GiftInput) (models.Gift, error) {
	in = in.WithDefaults()
	if err := in.Validate(); err != nil {
		return models.Gift{}, err
	}
	return r.rows.insert(ctx, giftRow(in))
}

// Update rejects a reaction unless the gift is, or becomes, given. A patch
// that sets a reaction without a status is checked against the stored row.
func (r *GiftRepository) Update(ctx context.Context, id string, p models.GiftPatch) (models.Gift, error) {
	if err := p.Validate(); err != nil {
		return models.Gift{}, err
	}
	if p.Reaction != nil && *p.Reaction != "" && p.Status == nil {
		current, err := r.rows.one(ctx, id)
		if err != nil {
			return models.Gift{}, err
		}
		if current.Status != models.GiftGiven {
			return models.Gift{}, &ValidationError{Entity: "gift", Field: "reaction", Reason: "requires status given"}
		}
	}
	return r.rows.update(ctx, id, giftPatchRow(p))
}

func (r *GiftRepository) Delete(ctx context.Context, id string) error {
	return r.rows.remove(ctx, id)
}

func (r *GiftRepository) ByContact(ctx context.Context, contactID string) ([]models.Gift, error) {
	return r.rows.all(ctx, db.Filter{"contact_id": contactID})
}
