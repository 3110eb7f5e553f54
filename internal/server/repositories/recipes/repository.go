package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Repository stores recipes and their tag/ingredient links. Every method is
// scoped to the owner id it receives.
type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Get(ctx context.Context, owner, id int64) (*models.Recipe, error)
	List(ctx context.Context, owner int64, filter models.RecipeFilter) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Delete(ctx context.Context, owner, id int64) (image string, err error)

	// SetItems replaces the recipe's links of the given kind with ids.
	// It fails with common.ErrForeignReference when any id is not an
	// item of owner.
	SetItems(ctx context.Context, owner, recipeID int64, kind models.CatalogKind, ids []int64) error

	// SetImage stores key as the recipe image and returns the key it
	// replaced.
	SetImage(ctx context.Context, owner, id int64, key string) (previous string, err error)
}
