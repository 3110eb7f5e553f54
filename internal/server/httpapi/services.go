package httpapi

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
)

// UserService is the part of services.UserService the API needs.
type UserService interface {
	CreateUser(ctx context.Context, in services.UserInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ResolveToken(ctx context.Context, token string) (*models.User, error)
	RevokeToken(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, userID int64, upd services.ProfileUpdate, partial bool) (*models.User, error)
}

// CatalogService serves /tags or /ingredients.
type CatalogService interface {
	List(ctx context.Context, owner int64, assignedOnly bool) ([]*models.CatalogItem, error)
	Get(ctx context.Context, owner, id int64) (*models.CatalogItem, error)
	Create(ctx context.Context, owner int64, name string) (*models.CatalogItem, error)
	Update(ctx context.Context, owner, id int64, name *string, partial bool) (*models.CatalogItem, error)
	Delete(ctx context.Context, owner, id int64) error
}

type RecipeService interface {
	List(ctx context.Context, owner int64, filter models.RecipeFilter) ([]*models.Recipe, error)
	Get(ctx context.Context, owner, id int64) (*models.Recipe, error)
	Create(ctx context.Context, owner int64, in services.RecipeInput) (*models.Recipe, error)
	Update(ctx context.Context, owner, id int64, in services.RecipeInput, partial bool) (*models.Recipe, error)
	Delete(ctx context.Context, owner, id int64) error
	UploadImage(ctx context.Context, owner, id int64, data []byte) (*models.Recipe, error)
	ClearImage(ctx context.Context, owner, id int64) error
	ImageURL(ctx context.Context, key string) (string, error)
}

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles the handlers' dependencies.
type Services struct {
	Users       UserService
	Tags        CatalogService
	Ingredients CatalogService
	Recipes     RecipeService
	DB          Pinger
}
