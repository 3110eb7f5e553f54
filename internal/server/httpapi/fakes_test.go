package httpapi

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/server/models"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
)

type fakeUsers struct {
	byToken map[string]*models.User
	created []services.UserInput
	revoked []string

	createErr  error
	authErr    error
	resolveErr error
	updateErr  error

	lastUpdate  services.ProfileUpdate
	lastPartial bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byToken: map[string]*models.User{}}
}

func (f *fakeUsers) CreateUser(ctx context.Context, in services.UserInput) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &models.User{ID: int64(len(f.created)), Email: in.Email, Name: in.Name, PasswordHash: "hash"}, nil
}

func (f *fakeUsers) Authenticate(ctx context.Context, email, password string) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return "tok-" + email, nil
}

func (f *fakeUsers) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	u, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

func (f *fakeUsers) RevokeToken(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	delete(f.byToken, token)
	return nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, userID int64, upd services.ProfileUpdate, partial bool) (*models.User, error) {
	f.lastUpdate, f.lastPartial = upd, partial
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, u := range f.byToken {
		if u.ID == userID {
			if upd.Name != nil {
				u.Name = *upd.Name
			}
			if upd.Email != nil {
				u.Email = *upd.Email
			}
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeCatalog struct {
	items  map[int64]*models.CatalogItem
	nextID int64

	lastAssigned bool
	lastPartial  bool
	err          error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{items: map[int64]*models.CatalogItem{}}
}

func (f *fakeCatalog) add(owner int64, name string) *models.CatalogItem {
	f.nextID++
	it := &models.CatalogItem{ID: f.nextID, UserID: owner, Name: name}
	f.items[it.ID] = it
	return it
}

func (f *fakeCatalog) List(ctx context.Context, owner int64, assignedOnly bool) ([]*models.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastAssigned = assignedOnly
	var out []*models.CatalogItem
	for id := f.nextID; id > 0; id-- {
		if it, ok := f.items[id]; ok && it.UserID == owner {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Get(ctx context.Context, owner, id int64) (*models.CatalogItem, error) {
	it, ok := f.items[id]
	if !ok || it.UserID != owner {
		return nil, common.ErrorNotFound
	}
	return it, nil
}

func (f *fakeCatalog) Create(ctx context.Context, owner int64, name string) (*models.CatalogItem, error) {
	if name == "" {
		return nil, common.NewValidationError("name", "this field is required")
	}
	return f.add(owner, name), nil
}

func (f *fakeCatalog) Update(ctx context.Context, owner, id int64, name *string, partial bool) (*models.CatalogItem, error) {
	f.lastPartial = partial
	it, err := f.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		it.Name = *name
	}
	return it, nil
}

func (f *fakeCatalog) Delete(ctx context.Context, owner, id int64) error {
	if _, err := f.Get(ctx, owner, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

type fakeRecipes struct {
	recipes map[int64]*models.Recipe

	lastFilter  models.RecipeFilter
	lastInput   services.RecipeInput
	lastPartial bool
	uploaded    []byte
	cleared     []int64

	uploadErr error
	listErr   error
	urlErr    error
	panicOn   string
}

func newFakeRecipes() *fakeRecipes {
	return &fakeRecipes{recipes: map[int64]*models.Recipe{}}
}

func (f *fakeRecipes) List(ctx context.Context, owner int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	if f.panicOn == "list" {
		panic("kaboom")
	}
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Recipe
	for _, r := range f.recipes {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecipes) Get(ctx context.Context, owner, id int64) (*models.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok || r.UserID != owner {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeRecipes) Create(ctx context.Context, owner int64, in services.RecipeInput) (*models.Recipe, error) {
	f.lastInput = in
	if in.Title == nil {
		return nil, common.NewValidationError("title", "this field is required")
	}
	r := &models.Recipe{ID: int64(len(f.recipes) + 1), UserID: owner, Title: *in.Title}
	if in.TimeMinutes != nil {
		r.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		r.Price = *in.Price
	}
	f.recipes[r.ID] = r
	return r, nil
}

func (f *fakeRecipes) Update(ctx context.Context, owner, id int64, in services.RecipeInput, partial bool) (*models.Recipe, error) {
	f.lastInput, f.lastPartial = in, partial
	r, err := f.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		r.Title = *in.Title
	}
	return r, nil
}

func (f *fakeRecipes) Delete(ctx context.Context, owner, id int64) error {
	if _, err := f.Get(ctx, owner, id); err != nil {
		return err
	}
	delete(f.recipes, id)
	return nil
}

func (f *fakeRecipes) UploadImage(ctx context.Context, owner, id int64, data []byte) (*models.Recipe, error) {
	r, err := f.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = data
	r.Image = "recipes/2024/01/01/new.png"
	return r, nil
}

func (f *fakeRecipes) ClearImage(ctx context.Context, owner, id int64) error {
	r, err := f.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	r.Image = ""
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeRecipes) ImageURL(ctx context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "http://media.test/" + key, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

var errBoom = errors.New("boom")
