package tokens

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID int64, tokenID string, expiresAt sql.NullTime) error
	Find(ctx context.Context, tokenID string) (*models.AuthToken, error)
	Delete(ctx context.Context, tokenID string) error
	DeleteByUser(ctx context.Context, userID int64, keepID string) error
}
