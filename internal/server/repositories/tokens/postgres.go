// Package tokens stores issued bearer token ids so that tokens can be
// checked for existence and revoked.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID int64, tokenID string, expiresAt sql.NullTime) error {
	query := `INSERT INTO auth_tokens (id, user_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, tokenID, userID, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the token row; expired rows are still returned and left to the
// caller to judge.
func (r *PostgresRepository) Find(ctx context.Context, tokenID string) (*models.AuthToken, error) {
	query := `SELECT id, user_id, created_at, expires_at FROM auth_tokens WHERE id = $1`

	t := &models.AuthToken{}
	err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenID string) error {
	query := `DELETE FROM auth_tokens WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, tokenID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByUser revokes every token of the user except keepID. An empty
// keepID revokes all of them.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID int64, keepID string) error {
	query := `DELETE FROM auth_tokens WHERE user_id = $1 AND id <> $2`
	if _, err := r.db.ExecContext(ctx, query, userID, keepID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
