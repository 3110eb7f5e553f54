// Package catalog implements storage for tags and ingredients. Both kinds
// share one table shape and one join-table shape, so a single repository
// parameterized by kind serves them.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

// Schema names the tables backing one catalog kind.
type Schema struct {
	Table      string // e.g. tags
	JoinTable  string // recipe link table, e.g. recipe_tags
	JoinColumn string // item column in JoinTable, e.g. tag_id
}

// SchemaFor returns the tables of kind. It panics on an unknown kind.
func SchemaFor(kind models.CatalogKind) Schema {
	switch kind {
	case models.KindTag:
		return Schema{Table: "tags", JoinTable: "recipe_tags", JoinColumn: "tag_id"}
	case models.KindIngredient:
		return Schema{Table: "ingredients", JoinTable: "recipe_ingredients", JoinColumn: "ingredient_id"}
	default:
		panic(fmt.Sprintf("catalog: unknown kind %v", kind))
	}
}

type PostgresRepository struct {
	db     dbx.DBTX
	schema Schema
}

func NewPostgresRepository(db dbx.DBTX, kind models.CatalogKind) *PostgresRepository {
	return &PostgresRepository{db: db, schema: SchemaFor(kind)}
}

// List returns the owner's items ordered by name descending, ties broken by
// id. With assignedOnly only items linked to at least one of the owner's
// recipes are returned, each once.
func (r *PostgresRepository) List(ctx context.Context, owner int64, assignedOnly bool) ([]*models.CatalogItem, error) {
	s := r.schema

	query := fmt.Sprintf(
		`SELECT c.id, c.user_id, c.name FROM %s c
		 WHERE c.user_id = $1
		 ORDER BY c.name DESC, c.id ASC`, s.Table)

	if assignedOnly {
		query = fmt.Sprintf(
			`SELECT DISTINCT c.id, c.user_id, c.name FROM %s c
			 JOIN %s j ON j.%s = c.id
			 JOIN recipes r ON r.id = j.recipe_id
			 WHERE c.user_id = $1 AND r.user_id = $1
			 ORDER BY c.name DESC, c.id ASC`, s.Table, s.JoinTable, s.JoinColumn)
	}

	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*models.CatalogItem, 0)
	for rows.Next() {
		it := &models.CatalogItem{}
		if err := rows.Scan(&it.ID, &it.UserID, &it.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) Get(ctx context.Context, owner, id int64) (*models.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT id, user_id, name FROM %s WHERE id = $1 AND user_id = $2`, r.schema.Table)

	it := &models.CatalogItem{}
	err := r.db.QueryRowContext(ctx, query, id, owner).Scan(&it.ID, &it.UserID, &it.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	query := fmt.Sprintf(`INSERT INTO %s (user_id, name) VALUES ($1, $2) RETURNING id`, r.schema.Table)

	if err := r.db.QueryRowContext(ctx, query, item.UserID, item.Name).Scan(&item.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

// Update renames the item. An item of another owner is reported as not found.
func (r *PostgresRepository) Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	query := fmt.Sprintf(`UPDATE %s SET name = $3 WHERE id = $1 AND user_id = $2`, r.schema.Table)

	res, err := r.db.ExecContext(ctx, query, item.ID, item.UserID, item.Name)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, owner, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.schema.Table)

	res, err := r.db.ExecContext(ctx, query, id, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
