package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/media"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// maxPrice is the exclusive upper bound of NUMERIC(5,2).
var maxPrice = decimal.NewFromInt(1000)

// RecipeInput carries recipe fields from a request; nil means absent.
// For Tags and Ingredients a non-nil empty slice clears the links.
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Link        *string
	Tags        *[]int64
	Ingredients *[]int64
}

// RecipeService implements recipe CRUD, filtering and image attachment for
// the owner passed to each call.
type RecipeService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         media.Store
	maxImageBytes int64
	log           logging.Logger
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, store media.Store, cfg *config.Config, log logging.Logger) *RecipeService {
	return &RecipeService{
		db:            db,
		repomanager:   m,
		store:         store,
		maxImageBytes: cfg.MaxImageBytes,
		log:           log,
	}
}

func (s *RecipeService) List(ctx context.Context, owner int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	return s.repomanager.Recipes(s.db).List(ctx, owner, filter)
}

func (s *RecipeService) Get(ctx context.Context, owner, id int64) (*models.Recipe, error) {
	return s.repomanager.Recipes(s.db).Get(ctx, owner, id)
}

// Create stores a recipe and its links in one transaction. Title, time and
// price are required.
func (s *RecipeService) Create(ctx context.Context, owner int64, in RecipeInput) (*models.Recipe, error) {
	recipe := &models.Recipe{UserID: owner}
	if err := applyRecipeInput(recipe, in, false); err != nil {
		return nil, err
	}

	var out *models.Recipe
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		created, err := repo.Create(ctx, recipe)
		if err != nil {
			return fmt.Errorf("error creating recipe: %w", err)
		}
		if err := s.setLinks(ctx, tx, owner, created.ID, in, false); err != nil {
			return err
		}

		out, err = repo.Get(ctx, owner, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies in to the recipe. A full update needs every required field
// and resets omitted links and link text; a partial update leaves absent
// fields untouched.
func (s *RecipeService) Update(ctx context.Context, owner, id int64, in RecipeInput, partial bool) (*models.Recipe, error) {
	var out *models.Recipe
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recipes(tx)

		recipe, err := repo.Get(ctx, owner, id)
		if err != nil {
			return err
		}
		if err := applyRecipeInput(recipe, in, partial); err != nil {
			return err
		}

		if _, err := repo.Update(ctx, recipe); err != nil {
			return fmt.Errorf("error updating recipe: %w", err)
		}
		if err := s.setLinks(ctx, tx, owner, id, in, partial); err != nil {
			return err
		}

		out, err = repo.Get(ctx, owner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the recipe and then releases its image.
func (s *RecipeService) Delete(ctx context.Context, owner, id int64) error {
	image, err := s.repomanager.Recipes(s.db).Delete(ctx, owner, id)
	if err != nil {
		return err
	}
	s.release(ctx, image)
	return nil
}

// UploadImage validates data, stores it under a fresh key, points the recipe
// at it and releases the previous image. On failure the recipe is unchanged.
func (s *RecipeService) UploadImage(ctx context.Context, owner, id int64, data []byte) (*models.Recipe, error) {
	repo := s.repomanager.Recipes(s.db)

	recipe, err := repo.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	img, err := media.DecodeImage(data, s.maxImageBytes)
	if err != nil {
		return nil, err
	}

	key := media.NewKey(img.Ext)
	if err := s.store.Save(ctx, key, img.ContentType, img.Data); err != nil {
		return nil, fmt.Errorf("error saving image: %w", err)
	}

	previous, err := repo.SetImage(ctx, owner, id, key)
	if err != nil {
		s.release(ctx, key)
		return nil, err
	}
	s.release(ctx, previous)

	recipe.Image = key
	return recipe, nil
}

// ClearImage detaches the image and releases it.
func (s *RecipeService) ClearImage(ctx context.Context, owner, id int64) error {
	previous, err := s.repomanager.Recipes(s.db).SetImage(ctx, owner, id, "")
	if err != nil {
		return err
	}
	s.release(ctx, previous)
	return nil
}

// ImageURL resolves an image key to a URL clients can fetch.
func (s *RecipeService) ImageURL(ctx context.Context, key string) (string, error) {
	return s.store.URL(ctx, key)
}

// release deletes a stored object. Failures are logged only; the database no
// longer references the key.
func (s *RecipeService) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "release image failed", "key", key, "error", err)
	}
}

func (s *RecipeService) setLinks(ctx context.Context, tx dbx.DBTX, owner, id int64, in RecipeInput, partial bool) error {
	repo := s.repomanager.Recipes(tx)

	for _, l := range []struct {
		kind  models.CatalogKind
		field string
		ids   *[]int64
	}{
		{models.KindTag, "tags", in.Tags},
		{models.KindIngredient, "ingredients", in.Ingredients},
	} {
		if l.ids == nil && partial {
			continue
		}
		var ids []int64
		if l.ids != nil {
			ids = *l.ids
		}
		if err := repo.SetItems(ctx, owner, id, l.kind, ids); err != nil {
			if errors.Is(err, common.ErrForeignReference) {
				return common.NewValidationError(l.field, fmt.Sprintf("invalid pk: no such %s", l.kind))
			}
			return fmt.Errorf("error linking %ss: %w", l.kind, err)
		}
	}
	return nil
}

// applyRecipeInput copies supplied scalars onto recipe and validates the
// result.
func applyRecipeInput(recipe *models.Recipe, in RecipeInput, partial bool) error {
	verr := &common.ValidationError{}

	switch {
	case in.Title != nil:
		recipe.Title = cleanName(verr, "title", *in.Title, true)
	case !partial:
		verr.Add("title", msgRequired)
	}

	switch {
	case in.TimeMinutes != nil:
		recipe.TimeMinutes = *in.TimeMinutes
		validateTimeMinutes(verr, recipe.TimeMinutes)
	case !partial:
		verr.Add("time_minutes", msgRequired)
	}

	switch {
	case in.Price != nil:
		recipe.Price = *in.Price
		validatePrice(verr, recipe.Price)
	case !partial:
		verr.Add("price", msgRequired)
	}

	switch {
	case in.Link != nil:
		recipe.Link = cleanName(verr, "link", *in.Link, false)
	case !partial:
		recipe.Link = ""
	}

	return verr.OrNil()
}

func validatePrice(verr *common.ValidationError, p decimal.Decimal) {
	switch {
	case p.IsNegative():
		verr.Add("price", "ensure this value is greater than or equal to 0")
	case !p.Equal(p.Truncate(2)):
		verr.Add("price", "ensure that there are no more than 2 decimal places")
	case p.GreaterThanOrEqual(maxPrice):
		verr.Add("price", "ensure that there are no more than 5 digits in total")
	}
}
