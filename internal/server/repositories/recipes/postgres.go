// Package recipes implements PostgreSQL storage for recipes together with
// their tag and ingredient associations.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/catalog"
)

const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price, r.link, r.image, r.created_at, r.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the recipe scalars. Associations are written separately
// with SetItems.
func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query :=
		`INSERT INTO recipes (user_id, title, time_minutes, price, link)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link,
	).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if recipe.Tags == nil {
		recipe.Tags = []*models.CatalogItem{}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []*models.CatalogItem{}
	}
	return recipe, nil
}

// Get returns the recipe with its tags and ingredients filled in.
func (r *PostgresRepository) Get(ctx context.Context, owner, id int64) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = $1 AND r.user_id = $2`

	recipe := &models.Recipe{}
	err := scanRecipe(r.db.QueryRowContext(ctx, query, id, owner), recipe)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.attachItems(ctx, []*models.Recipe{recipe}); err != nil {
		return nil, err
	}
	return recipe, nil
}

// List returns the owner's recipes, newest first. Ids within one filter
// dimension match any; both dimensions must match when both are set.
func (r *PostgresRepository) List(ctx context.Context, owner int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + recipeColumns + ` FROM recipes r WHERE r.user_id = $1`)
	args := []any{owner}

	for _, f := range []struct {
		kind models.CatalogKind
		ids  []int64
	}{
		{models.KindTag, filter.TagIDs},
		{models.KindIngredient, filter.IngredientIDs},
	} {
		if len(f.ids) == 0 {
			continue
		}
		s := catalog.SchemaFor(f.kind)
		fmt.Fprintf(&b, ` AND EXISTS (SELECT 1 FROM %s j WHERE j.recipe_id = r.id AND j.%s IN (%s))`,
			s.JoinTable, s.JoinColumn, dbx.Placeholders(len(args)+1, len(f.ids)))
		args = append(args, dbx.Int64Args(f.ids)...)
	}
	b.WriteString(` ORDER BY r.id DESC`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Recipe, 0)
	for rows.Next() {
		recipe := &models.Recipe{}
		if err := scanRecipe(rows, recipe); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Update writes the recipe scalars and bumps updated_at. The image column is
// left alone.
func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query :=
		`UPDATE recipes SET title = $3, time_minutes = $4, price = $5, link = $6, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		recipe.ID, recipe.UserID, recipe.Title, recipe.TimeMinutes, recipe.Price, recipe.Link,
	).Scan(&recipe.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

// Delete removes the recipe and returns its image key so the caller can
// release the stored object. Links go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, owner, id int64) (string, error) {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2 RETURNING image`

	var image string
	if err := r.db.QueryRowContext(ctx, query, id, owner).Scan(&image); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return image, nil
}

func (r *PostgresRepository) SetItems(ctx context.Context, owner, recipeID int64, kind models.CatalogKind, ids []int64) error {
	s := catalog.SchemaFor(kind)

	unlink := fmt.Sprintf(`DELETE FROM %s WHERE recipe_id = $1`, s.JoinTable)
	if _, err := r.db.ExecContext(ctx, unlink, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	// Only the owner's items are selected, so a short insert count means
	// some id was foreign or missing.
	insert := fmt.Sprintf(
		`INSERT INTO %s (recipe_id, %s)
		 SELECT $1::bigint, c.id FROM %s c WHERE c.user_id = $2 AND c.id IN (%s)`,
		s.JoinTable, s.JoinColumn, s.Table, dbx.Placeholders(3, len(ids)))

	args := append([]any{recipeID, owner}, dbx.Int64Args(ids)...)
	res, err := r.db.ExecContext(ctx, insert, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != int64(len(ids)) {
		return common.ErrForeignReference
	}
	return nil
}

func (r *PostgresRepository) SetImage(ctx context.Context, owner, id int64, key string) (string, error) {
	query :=
		`UPDATE recipes r SET image = $3, updated_at = now()
		 FROM (SELECT id, image FROM recipes WHERE id = $1 AND user_id = $2 FOR UPDATE) old
		 WHERE r.id = old.id
		 RETURNING old.image`

	var previous string
	if err := r.db.QueryRowContext(ctx, query, id, owner, key).Scan(&previous); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return previous, nil
}

// attachItems loads tags and ingredients for all recipes in two queries.
func (r *PostgresRepository) attachItems(ctx context.Context, list []*models.Recipe) error {
	byID := make(map[int64]*models.Recipe, len(list))
	ids := make([]int64, 0, len(list))
	for _, recipe := range list {
		recipe.Tags = []*models.CatalogItem{}
		recipe.Ingredients = []*models.CatalogItem{}
		byID[recipe.ID] = recipe
		ids = append(ids, recipe.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	for _, kind := range []models.CatalogKind{models.KindTag, models.KindIngredient} {
		s := catalog.SchemaFor(kind)
		query := fmt.Sprintf(
			`SELECT j.recipe_id, c.id, c.user_id, c.name FROM %s j
			 JOIN %s c ON c.id = j.%s
			 WHERE j.recipe_id IN (%s)
			 ORDER BY c.id`,
			s.JoinTable, s.Table, s.JoinColumn, dbx.Placeholders(1, len(ids)))

		rows, err := r.db.QueryContext(ctx, query, dbx.Int64Args(ids)...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		for rows.Next() {
			var recipeID int64
			it := &models.CatalogItem{}
			if err := rows.Scan(&recipeID, &it.ID, &it.UserID, &it.Name); err != nil {
				rows.Close()
				return fmt.Errorf("db error: %w", err)
			}
			recipe, ok := byID[recipeID]
			if !ok {
				continue
			}
			if kind == models.KindTag {
				recipe.Tags = append(recipe.Tags, it)
			} else {
				recipe.Ingredients = append(recipe.Ingredients, it)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner, recipe *models.Recipe) error {
	return row.Scan(&recipe.ID, &recipe.UserID, &recipe.Title, &recipe.TimeMinutes,
		&recipe.Price, &recipe.Link, &recipe.Image, &recipe.CreatedAt, &recipe.UpdatedAt)
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
