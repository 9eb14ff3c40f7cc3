// Package repository declares the data-access contracts the services depend
// on. The sqldb package implements them; service tests use in-memory fakes.
//
// Every method takes a context so request cancellation reaches the store.
// Lookups of a missing key return an *apperror.AppError wrapping
// apperror.ErrNotFound, never (nil, nil).
package repository

import (
	"context"
	"encoding/json"

	"github.com/sakif/mealdb/internal/model"
)

// ListOptions bounds a List call. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// Create stores a new user. passwordHash is the bcrypt digest.
	// A taken username fails with apperror.Duplicate.
	Create(ctx context.Context, u model.NewUser, passwordHash string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetAuthByUsername also returns the password digest. Only the auth
	// service calls it.
	GetAuthByUsername(ctx context.Context, username string) (*model.UserAuth, error)
	IDByUsername(ctx context.Context, username string) (int64, error)
	Exists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	// Update applies a partial patch. patch.Password, when set, must already
	// be hashed.
	Update(ctx context.Context, username string, patch UserPatch) (*model.User, error)
	Delete(ctx context.Context, username string) error
}

type RecipeRepository interface {
	Create(ctx context.Context, r *model.Recipe) error
	GetByID(ctx context.Context, id int64) (*model.Recipe, error)
	List(ctx context.Context, opts ListOptions) ([]model.Recipe, error)
	// AddOrUpdate inserts r when r.ID is zero. Otherwise it overwrites the
	// recipe with that id only if r.UserID owns it, and returns NotFound
	// when no such recipe exists.
	AddOrUpdate(ctx context.Context, r *model.Recipe) error
	Update(ctx context.Context, id int64, patch RecipePatch) (*model.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

type FavoriteRepository interface {
	// Add inserts the favorite, or refreshes its snapshot if the user has
	// already favorited recipeID.
	Add(ctx context.Context, userID int64, f model.Favorite) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Favorite, error)
}

type MealPlanRepository interface {
	Create(ctx context.Context, mp *model.MealPlan) error
	GetByID(ctx context.Context, id int64) (*model.MealPlan, error)
	ListByUser(ctx context.Context, userID int64) ([]model.MealPlan, error)
	Update(ctx context.Context, id int64, patch MealPlanPatch) (*model.MealPlan, error)
	Delete(ctx context.Context, id int64) error
}

// PATCHES:
// A nil field means "leave unchanged". A patch with every field nil is
// rejected by the repository with a validation error before any query runs.

type UserPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
}

func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Password == nil
}

type RecipePatch struct {
	Title        *string `json:"title"`
	Category     *string `json:"category"`
	Instructions *string `json:"instructions"`
}

func (p RecipePatch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.Instructions == nil
}

type MealPlanPatch struct {
	Title   *string         `json:"title"`
	Recipes json.RawMessage `json:"recipes"`
}

func (p MealPlanPatch) Empty() bool {
	return p.Title == nil && p.Recipes == nil
}
