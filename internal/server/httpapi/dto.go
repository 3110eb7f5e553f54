package httpapi

import (
	"context"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/shopspring/decimal"
)

type userRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{Email: u.Email, Name: u.Name}
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type catalogRequest struct {
	Name *string `json:"name"`
}

type catalogItemResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newCatalogItemResponse(it *models.CatalogItem) catalogItemResponse {
	return catalogItemResponse{ID: it.ID, Name: it.Name}
}

func newCatalogListResponse(items []*models.CatalogItem) []catalogItemResponse {
	out := make([]catalogItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, newCatalogItemResponse(it))
	}
	return out
}

// recipeRequest accepts price as a JSON string ("5.50") or number.
type recipeRequest struct {
	Title       *string          `json:"title"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
	Tags        *[]int64         `json:"tags"`
	Ingredients *[]int64         `json:"ingredients"`
}

func (r recipeRequest) input() services.RecipeInput {
	return services.RecipeInput{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        r.Tags,
		Ingredients: r.Ingredients,
	}
}

type recipeFields struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       string  `json:"price"`
	Link        string  `json:"link"`
	Image       *string `json:"image"`
}

// recipeResponse is the list representation: links as ids.
type recipeResponse struct {
	recipeFields
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// recipeDetailResponse nests the linked tags and ingredients.
type recipeDetailResponse struct {
	recipeFields
	Tags        []catalogItemResponse `json:"tags"`
	Ingredients []catalogItemResponse `json:"ingredients"`
}

type recipeImageResponse struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}

// imageURL resolves a stored key to a client URL; no image yields nil.
func (s *Server) imageURL(ctx context.Context, key string) (*string, error) {
	if key == "" {
		return nil, nil
	}
	url, err := s.services.Recipes.ImageURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *Server) newRecipeFields(ctx context.Context, r *models.Recipe) (recipeFields, error) {
	img, err := s.imageURL(ctx, r.Image)
	if err != nil {
		return recipeFields{}, err
	}
	return recipeFields{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Image:       img,
	}, nil
}

func (s *Server) newRecipeResponse(ctx context.Context, r *models.Recipe) (recipeResponse, error) {
	f, err := s.newRecipeFields(ctx, r)
	if err != nil {
		return recipeResponse{}, err
	}
	return recipeResponse{recipeFields: f, Tags: r.TagIDs(), Ingredients: r.IngredientIDs()}, nil
}

func (s *Server) newRecipeDetailResponse(ctx context.Context, r *models.Recipe) (recipeDetailResponse, error) {
	f, err := s.newRecipeFields(ctx, r)
	if err != nil {
		return recipeDetailResponse{}, err
	}
	return recipeDetailResponse{
		recipeFields: f,
		Tags:         newCatalogListResponse(r.Tags),
		Ingredients:  newCatalogListResponse(r.Ingredients),
	}, nil
}
