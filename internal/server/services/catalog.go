package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
)

// CatalogService manages one kind of catalog item (tags or ingredients)
// for the owner passed to each call.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	kind        models.CatalogKind
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, kind models.CatalogKind) *CatalogService {
	return &CatalogService{db: db, repomanager: m, kind: kind}
}

// Kind reports which catalog the service manages.
func (s *CatalogService) Kind() models.CatalogKind {
	return s.kind
}

func (s *CatalogService) List(ctx context.Context, owner int64, assignedOnly bool) ([]*models.CatalogItem, error) {
	return s.repomanager.Catalog(s.db, s.kind).List(ctx, owner, assignedOnly)
}

func (s *CatalogService) Get(ctx context.Context, owner, id int64) (*models.CatalogItem, error) {
	return s.repomanager.Catalog(s.db, s.kind).Get(ctx, owner, id)
}

func (s *CatalogService) Create(ctx context.Context, owner int64, name string) (*models.CatalogItem, error) {
	verr := &common.ValidationError{}
	name = cleanName(verr, "name", name, true)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return s.repomanager.Catalog(s.db, s.kind).Create(ctx, &models.CatalogItem{UserID: owner, Name: name})
}

// Update renames an item. A full update requires name; a partial update
// without one returns the item unchanged.
func (s *CatalogService) Update(ctx context.Context, owner, id int64, name *string, partial bool) (*models.CatalogItem, error) {
	repo := s.repomanager.Catalog(s.db, s.kind)

	if name == nil {
		if !partial {
			// the item must still exist for a 404 to take precedence
			if _, err := repo.Get(ctx, owner, id); err != nil {
				return nil, err
			}
			return nil, common.NewValidationError("name", msgRequired)
		}
		return repo.Get(ctx, owner, id)
	}

	verr := &common.ValidationError{}
	clean := cleanName(verr, "name", *name, true)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return repo.Update(ctx, &models.CatalogItem{ID: id, UserID: owner, Name: clean})
}

func (s *CatalogService) Delete(ctx context.Context, owner, id int64) error {
	return s.repomanager.Catalog(s.db, s.kind).Delete(ctx, owner, id)
}
