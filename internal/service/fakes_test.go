package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

// =========================================================================
// FAKES
// =========================================================================
//
// In-memory implementations of the repository interfaces. A fake (not a
// mock framework) keeps tests readable: each one does exactly what the real
// store promises, in a few lines of Go.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.UserAuth // keyed by username
	nextID int64

	// set to a non-nil error to simulate a database failure
	createErr error
	// counts Create calls, so tests can prove no store write happened
	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.UserAuth), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, nu model.NewUser, hash string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[nu.Username]; ok {
		return nil, apperror.Duplicate("username", nu.Username)
	}
	ua := &model.UserAuth{
		User: model.User{
			ID: f.nextID, Username: nu.Username, FirstName: nu.FirstName,
			LastName: nu.LastName, Email: nu.Email, IsAdmin: nu.IsAdmin,
		},
		PasswordHash: hash,
	}
	f.nextID++
	f.users[nu.Username] = ua
	u := ua.User
	return &u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	ua, err := f.GetAuthByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	u := ua.User
	return &u, nil
}

func (f *fakeUserRepo) GetAuthByUsername(ctx context.Context, username string) (*model.UserAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ua, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFoundBy("user", "username", username)
	}
	cp := *ua
	return &cp, nil
}

func (f *fakeUserRepo) IDByUsername(ctx context.Context, username string) (int64, error) {
	u, err := f.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeUserRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.User{}
	for _, ua := range f.users {
		out = append(out, ua.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if opts.Limit > 0 {
		lo := min(opts.Offset, len(out))
		hi := min(lo+opts.Limit, len(out))
		out = out[lo:hi]
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, username string, p repository.UserPatch) (*model.User, error) {
	if p.Empty() {
		return nil, apperror.ValidationFailed("", "No data")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ua, ok := f.users[username]
	if !ok {
		return nil, apperror.NotFoundBy("user", "username", username)
	}
	if p.FirstName != nil {
		ua.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		ua.LastName = *p.LastName
	}
	if p.Email != nil {
		ua.Email = *p.Email
	}
	if p.Password != nil {
		ua.PasswordHash = *p.Password
	}
	u := ua.User
	return &u, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; !ok {
		return apperror.NotFoundBy("user", "username", username)
	}
	delete(f.users, username)
	return nil
}

type fakeRecipeRepo struct {
	mu      sync.Mutex
	recipes map[int64]model.Recipe
	nextID  int64
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[int64]model.Recipe), nextID: 1}
}

func (f *fakeRecipeRepo) Create(ctx context.Context, r *model.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID
	f.nextID++
	f.recipes[r.ID] = *r
	return nil
}

func (f *fakeRecipeRepo) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe", strconv.FormatInt(id, 10))
	}
	return &r, nil
}

func (f *fakeRecipeRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Recipe{}
	for _, r := range f.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRecipeRepo) AddOrUpdate(ctx context.Context, r *model.Recipe) error {
	if r.ID == 0 {
		return f.Create(ctx, r)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.recipes[r.ID]
	if !ok || existing.UserID != r.UserID {
		return apperror.NotFound("recipe", strconv.FormatInt(r.ID, 10))
	}
	f.recipes[r.ID] = *r
	return nil
}

func (f *fakeRecipeRepo) Update(ctx context.Context, id int64, p repository.RecipePatch) (*model.Recipe, error) {
	if p.Empty() {
		return nil, apperror.ValidationFailed("", "No data")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe", strconv.FormatInt(id, 10))
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	f.recipes[id] = r
	return &r, nil
}

func (f *fakeRecipeRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		return apperror.NotFound("recipe", strconv.FormatInt(id, 10))
	}
	delete(f.recipes, id)
	return nil
}

type favKey struct{ user, recipe int64 }

type fakeFavoriteRepo struct {
	mu    sync.Mutex
	favs  map[favKey]model.Favorite
	order []favKey
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{favs: make(map[favKey]model.Favorite)}
}

func (f *fakeFavoriteRepo) Add(ctx context.Context, userID int64, fav model.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := favKey{userID, fav.RecipeID}
	if _, ok := f.favs[k]; !ok {
		f.order = append(f.order, k)
	}
	f.favs[k] = fav
	return nil
}

func (f *fakeFavoriteRepo) Remove(ctx context.Context, userID, recipeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := favKey{userID, recipeID}
	if _, ok := f.favs[k]; !ok {
		return apperror.NotFound("favorite recipe", strconv.FormatInt(recipeID, 10))
	}
	delete(f.favs, k)
	return nil
}

func (f *fakeFavoriteRepo) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.favs[favKey{userID, recipeID}]
	return ok, nil
}

func (f *fakeFavoriteRepo) ListByUser(ctx context.Context, userID int64) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Favorite{}
	for _, k := range f.order {
		if fav, ok := f.favs[k]; ok && k.user == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

type fakeMealPlanRepo struct {
	mu     sync.Mutex
	plans  map[int64]model.MealPlan
	nextID int64
}

func newFakeMealPlanRepo() *fakeMealPlanRepo {
	return &fakeMealPlanRepo{plans: make(map[int64]model.MealPlan), nextID: 1}
}

func (f *fakeMealPlanRepo) Create(ctx context.Context, mp *model.MealPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	mp.ID = f.nextID
	f.nextID++
	f.plans[mp.ID] = *mp
	return nil
}

func (f *fakeMealPlanRepo) GetByID(ctx context.Context, id int64) (*model.MealPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mp, ok := f.plans[id]
	if !ok {
		return nil, apperror.NotFound("meal plan", strconv.FormatInt(id, 10))
	}
	return &mp, nil
}

func (f *fakeMealPlanRepo) ListByUser(ctx context.Context, userID int64) ([]model.MealPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.MealPlan{}
	for _, mp := range f.plans {
		if mp.UserID == userID {
			out = append(out, mp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMealPlanRepo) Update(ctx context.Context, id int64, p repository.MealPlanPatch) (*model.MealPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mp, ok := f.plans[id]
	if !ok {
		return nil, apperror.NotFound("meal plan", strconv.FormatInt(id, 10))
	}
	if p.Title != nil {
		mp.Title = *p.Title
	}
	if p.Recipes != nil {
		mp.Recipes = p.Recipes
	}
	f.plans[id] = mp
	return &mp, nil
}

func (f *fakeMealPlanRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.plans[id]; !ok {
		return apperror.NotFound("meal plan", strconv.FormatInt(id, 10))
	}
	delete(f.plans, id)
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// seedUser puts a user straight into the fake, bypassing validation and
// hashing, and returns the identity a verified token for them would carry.
func seedUser(t *testing.T, users *fakeUserRepo, username string, admin bool) auth.Identity {
	t.Helper()
	_, err := users.Create(context.Background(), model.NewUser{
		Username: username, FirstName: "F", LastName: "L", Email: username + "@example.com", IsAdmin: admin,
	}, "unused-digest")
	if err != nil {
		t.Fatalf("seedUser(%s): %v", username, err)
	}
	return auth.Identity{Username: username, IsAdmin: admin}
}

func strPtr(s string) *string { return &s }
