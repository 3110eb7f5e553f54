// Package services contains server-side business logic. This file implements
// UserService: registration, credential checks, bearer token issuance and
// resolution, and profile management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// tokenIDBytes is the entropy of a token id (jti).
const tokenIDBytes = 16

// UserInput is the payload of POST /users.
type UserInput struct {
	Email    string
	Password string
	Name     string
}

// ProfileUpdate carries the fields of PUT/PATCH /users/me; nil means absent.
// Token is the bearer token of the request; it stays valid when the password
// changes while the user's other tokens are revoked.
type ProfileUpdate struct {
	Email    *string
	Password *string
	Name     *string
	Token    string
}

// UserService provides user and token operations.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// CreateUser registers an active, non-staff user.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	return s.createUser(ctx, in, false)
}

// CreateSuperuser registers an active user with staff and superuser flags.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return s.createUser(ctx, UserInput{Email: email, Password: password}, true)
}

func (s *UserService) createUser(ctx context.Context, in UserInput, super bool) (*models.User, error) {
	verr := &common.ValidationError{}
	email := normalizeEmail(in.Email)
	validateEmail(verr, email)
	validatePassword(verr, in.Password)
	name := cleanName(verr, "name", in.Name, false)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      super,
		IsSuperuser:  super,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError("email", "user with this email already exists")
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := cryptox.HashPassword("recipekeeper-dummy-password")
	return h
})

// Authenticate checks credentials and mints a new bearer token. Unknown
// email, inactive user and wrong password all yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	verr := &common.ValidationError{}
	email = normalizeEmail(email)
	if email == "" {
		verr.Add("email", msgRequired)
	}
	if password == "" {
		verr.Add("password", msgRequired)
	}
	if err := verr.OrNil(); err != nil {
		return "", err
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.CheckPassword(dummyHash(), password)
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if !cryptox.CheckPassword(user.PasswordHash, password) || !user.IsActive {
		return "", common.ErrorUnauthorized
	}

	return s.issueToken(ctx, user.ID)
}

func (s *UserService) issueToken(ctx context.Context, userID int64) (string, error) {
	tokenID, err := common.MakeRandHexString(tokenIDBytes)
	if err != nil {
		return "", fmt.Errorf("error generating token id: %w", err)
	}

	var expires sql.NullTime
	if s.tokenValidity > 0 {
		expires = sql.NullTime{Time: time.Now().Add(s.tokenValidity), Valid: true}
	}

	if err := s.repomanager.Tokens(s.db).Create(ctx, userID, tokenID, expires); err != nil {
		return "", fmt.Errorf("error storing token: %w", err)
	}

	token, err := auth.GenerateToken(userID, tokenID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return token, nil
}

// ResolveToken maps a presented bearer token to its active user. Any reason
// the token is unusable yields an error matching common.ErrorUnauthorized.
func (s *UserService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}

	stored, err := s.repomanager.Tokens(s.db).Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: token revoked", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("error searching token: %w", err)
	}
	if stored.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: token owner mismatch", common.ErrorUnauthorized)
	}
	if stored.ExpiresAt.Valid && stored.ExpiresAt.Time.Before(time.Now()) {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, common.ErrTokenExpired)
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: user gone", common.ErrorUnauthorized)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user inactive", common.ErrorUnauthorized)
	}
	return user, nil
}

// RevokeToken deletes the presented token so it can no longer authenticate.
func (s *UserService) RevokeToken(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	if err := s.repomanager.Tokens(s.db).Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("error deleting token: %w", err)
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByID(ctx, id)
}

// UpdateProfile applies upd to the user. A full update requires an email and
// resets an omitted name; a partial one touches only supplied fields. A new
// password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate, partial bool) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := &common.ValidationError{}

	switch {
	case upd.Email != nil:
		user.Email = normalizeEmail(*upd.Email)
		validateEmail(verr, user.Email)
	case !partial:
		verr.Add("email", msgRequired)
	}

	switch {
	case upd.Name != nil:
		user.Name = cleanName(verr, "name", *upd.Name, false)
	case !partial:
		user.Name = ""
	}

	if upd.Password != nil {
		validatePassword(verr, *upd.Password)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if upd.Password != nil {
		hash, err := cryptox.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	u, err := repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError("email", "user with this email already exists")
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	if upd.Password != nil {
		if err := s.revokeOtherTokens(ctx, userID, upd.Token); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *UserService) revokeOtherTokens(ctx context.Context, userID int64, current string) error {
	keep := ""
	if current != "" {
		if claims, err := auth.ParseToken(current, s.jwtSecret); err == nil && claims.UserID == userID {
			keep = claims.ID
		}
	}
	if err := s.repomanager.Tokens(s.db).DeleteByUser(ctx, userID, keep); err != nil {
		return fmt.Errorf("error revoking tokens: %w", err)
	}
	return nil
}
