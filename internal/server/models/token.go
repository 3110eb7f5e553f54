package models

import (
	"database/sql"
	"time"
)

// AuthToken records an issued bearer token by its id (the JWT jti).
type AuthToken struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt sql.NullTime
}
