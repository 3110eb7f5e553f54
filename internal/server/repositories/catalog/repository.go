package catalog

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Repository stores one kind of catalog item. Every method is scoped to the
// owner id it receives.
type Repository interface {
	List(ctx context.Context, owner int64, assignedOnly bool) ([]*models.CatalogItem, error)
	Get(ctx context.Context, owner, id int64) (*models.CatalogItem, error)
	Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error)
	Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error)
	Delete(ctx context.Context, owner, id int64) error
}
