// ABOUTME: Controller variant for entities with a many-to-many contact set
// ABOUTME: Adds create-with-relations and replace-all relation writes
package cache

import (
	"context"

	"github.com/harperreed/rapport/models"
)

type RelationRepository[T models.Entity, In any, P any] interface {
	Repository[T, In, P]
	CreateWithRelations(ctx context.Context, in In, relatedIDs []string) (T, error)
	UpdateRelations(ctx context.Context, id string, relatedIDs []string) (T, error)
}

type RelatedController[T models.Entity, In any, P any] struct {
	*Controller[T, In, P]
	rel RelationRepository[T, In, P]
}

func NewRelatedController[T models.Entity, In any, P any](entity string, repo RelationRepository[T, In, P], opts Options) *RelatedController[T, In, P] {
	return &RelatedController[T, In, P]{
		Controller: NewController[T, In, P](entity, repo, opts),
		rel:        repo,
	}
}

// AddWithRelations creates the entity with relatedIDs and appends it.
func (c *RelatedController[T, In, P]) AddWithRelations(ctx context.Context, in In, relatedIDs []string) (T, error) {
	return c.appendResult(ctx, "add", func(ctx context.Context) (T, error) {
		return c.rel.CreateWithRelations(ctx, in, relatedIDs)
	})
}

// SetRelations replaces the entity's whole related set. On failure the
// cached item keeps its old set even though the remote one may now be empty;
// Load to resynchronize.
func (c *RelatedController[T, In, P]) SetRelations(ctx context.Context, id string, relatedIDs []string) (T, error) {
	return c.replaceResult(ctx, "set_relations", id, func(ctx context.Context) (T, error) {
		return c.rel.UpdateRelations(ctx, id, relatedIDs)
	})
}
