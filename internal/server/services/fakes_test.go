package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/dbx"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	catalogrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/catalog"
	recipesrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/recipes"
	tokensrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/tokens"
	usersrepo "github.com/dmitrijs2005/recipekeeper/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- users ---

type fakeUsersRepo struct {
	byID   map[int64]*models.User
	nextID int64

	createErr error
	getErr    error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

// --- tokens ---

type fakeTokensRepo struct {
	rows map[string]*models.AuthToken

	createErr error
	findErr   error
	deleteErr error
}

func newFakeTokensRepo() *fakeTokensRepo {
	return &fakeTokensRepo{rows: map[string]*models.AuthToken{}}
}

func (f *fakeTokensRepo) Create(ctx context.Context, userID int64, tokenID string, expiresAt sql.NullTime) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[tokenID] = &models.AuthToken{ID: tokenID, UserID: userID, CreatedAt: time.Now(), ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokensRepo) Find(ctx context.Context, tokenID string) (*models.AuthToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.rows[tokenID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTokensRepo) Delete(ctx context.Context, tokenID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, tokenID)
	return nil
}

func (f *fakeTokensRepo) DeleteByUser(ctx context.Context, userID int64, keepID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for id, t := range f.rows {
		if t.UserID == userID && id != keepID {
			delete(f.rows, id)
		}
	}
	return nil
}

// --- catalog ---

type fakeCatalogRepo struct {
	items  map[int64]*models.CatalogItem
	nextID int64

	listAssigned bool
	err          error
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{items: map[int64]*models.CatalogItem{}}
}

func (f *fakeCatalogRepo) List(ctx context.Context, owner int64, assignedOnly bool) ([]*models.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.listAssigned = assignedOnly
	out := []*models.CatalogItem{}
	for _, it := range f.items {
		if it.UserID == owner {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name > out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeCatalogRepo) Get(ctx context.Context, owner, id int64) (*models.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	it, ok := f.items[id]
	if !ok || it.UserID != owner {
		return nil, common.ErrorNotFound
	}
	return it, nil
}

func (f *fakeCatalogRepo) Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	item.ID = f.nextID
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeCatalogRepo) Update(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	if _, err := f.Get(ctx, item.UserID, item.ID); err != nil {
		return nil, err
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeCatalogRepo) Delete(ctx context.Context, owner, id int64) error {
	if _, err := f.Get(ctx, owner, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

// --- recipes ---

type setItemsCall struct {
	kind models.CatalogKind
	ids  []int64
}

type fakeRecipesRepo struct {
	recipes map[int64]*models.Recipe
	nextID  int64

	setItemsCalls []setItemsCall
	setItemsErr   map[models.CatalogKind]error
	setImageErr   error
	createErr     error
}

func newFakeRecipesRepo() *fakeRecipesRepo {
	return &fakeRecipesRepo{recipes: map[int64]*models.Recipe{}, setItemsErr: map[models.CatalogKind]error{}}
}

func (f *fakeRecipesRepo) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.recipes[r.ID] = &cp
	return r, nil
}

func (f *fakeRecipesRepo) Get(ctx context.Context, owner, id int64) (*models.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok || r.UserID != owner {
		return nil, common.ErrorNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecipesRepo) List(ctx context.Context, owner int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	out := []*models.Recipe{}
	for _, r := range f.recipes {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRecipesRepo) Update(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	if _, err := f.Get(ctx, r.UserID, r.ID); err != nil {
		return nil, err
	}
	cp := *r
	f.recipes[r.ID] = &cp
	return r, nil
}

func (f *fakeRecipesRepo) Delete(ctx context.Context, owner, id int64) (string, error) {
	r, err := f.Get(ctx, owner, id)
	if err != nil {
		return "", err
	}
	delete(f.recipes, id)
	return r.Image, nil
}

func (f *fakeRecipesRepo) SetItems(ctx context.Context, owner, recipeID int64, kind models.CatalogKind, ids []int64) error {
	f.setItemsCalls = append(f.setItemsCalls, setItemsCall{kind: kind, ids: ids})
	if err := f.setItemsErr[kind]; err != nil {
		return err
	}
	items := make([]*models.CatalogItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, &models.CatalogItem{ID: id, UserID: owner})
	}
	r := f.recipes[recipeID]
	if kind == models.KindTag {
		r.Tags = items
	} else {
		r.Ingredients = items
	}
	return nil
}

func (f *fakeRecipesRepo) SetImage(ctx context.Context, owner, id int64, key string) (string, error) {
	if f.setImageErr != nil {
		return "", f.setImageErr
	}
	r, ok := f.recipes[id]
	if !ok || r.UserID != owner {
		return "", common.ErrorNotFound
	}
	prev := r.Image
	r.Image = key
	return prev, nil
}

// --- manager ---

type fakeRepoManager struct {
	u           *fakeUsersRepo
	t           *fakeTokensRepo
	tags        *fakeCatalogRepo
	ingredients *fakeCatalogRepo
	r           *fakeRecipesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:           newFakeUsersRepo(),
		t:           newFakeTokensRepo(),
		tags:        newFakeCatalogRepo(),
		ingredients: newFakeCatalogRepo(),
		r:           newFakeRecipesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Tokens(db dbx.DBTX) tokensrepo.Repository     { return m.t }
func (m *fakeRepoManager) Recipes(db dbx.DBTX) recipesrepo.Repository   { return m.r }

func (m *fakeRepoManager) Catalog(db dbx.DBTX, kind models.CatalogKind) catalogrepo.Repository {
	if kind == models.KindTag {
		return m.tags
	}
	return m.ingredients
}

// --- media ---

type fakeStore struct {
	saved   map[string][]byte
	deleted []string

	saveErr   error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string][]byte{}}
}

func (f *fakeStore) Save(ctx context.Context, key, contentType string, data []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[key] = data
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.saved, key)
	return nil
}

func (f *fakeStore) URL(ctx context.Context, key string) (string, error) {
	return "/media/" + key, nil
}
