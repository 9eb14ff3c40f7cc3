package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

// RecipeService handles user-authored recipes.
//
// Any authenticated user can read every recipe. Only the owner, or an
// admin, can change or delete one.
type RecipeService struct {
	recipes repository.RecipeRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewRecipeService(recipes repository.RecipeRepository, users repository.UserRepository, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		recipes: recipes,
		users:   users,
		logger:  logger,
	}
}

// RecipeInput is the body of a create request.
type RecipeInput struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Instructions string `json:"instructions"`
}

func (in RecipeInput) validate() (RecipeInput, error) {
	var err error
	if in.Title, err = requireText("title", in.Title, MaxTitleLength); err != nil {
		return in, err
	}
	if in.Category, err = requireText("category", in.Category, 0); err != nil {
		return in, err
	}
	if in.Instructions, err = requireText("instructions", in.Instructions, 0); err != nil {
		return in, err
	}
	return in, nil
}

// Create stores a recipe owned by the caller. Fields are validated before
// the caller is resolved, so a bad request never touches the store.
func (s *RecipeService) Create(ctx context.Context, caller auth.Identity, in RecipeInput) (*model.Recipe, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}

	r := &model.Recipe{
		Title:        in.Title,
		Category:     in.Category,
		Instructions: in.Instructions,
		UserID:       uid,
	}
	if err := s.recipes.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("service/recipe: creating recipe: %w", err)
	}

	s.logger.Info("recipe created",
		slog.Int64("id", r.ID),
		slog.String("owner", caller.Username),
	)
	return r, nil
}

func (s *RecipeService) List(ctx context.Context, limit, offset int) ([]model.Recipe, error) {
	recipes, err := s.recipes.List(ctx, listOptions(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("service/recipe: listing recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	return s.recipes.GetByID(ctx, id)
}

// Update applies a partial patch.
//
// STRATEGY: "fetch, check, then update"
// The fetch gives a NotFound for a missing id and the owner to check
// against; only then does the UPDATE run.
func (s *RecipeService) Update(ctx context.Context, caller auth.Identity, id int64, patch repository.RecipePatch) (*model.Recipe, error) {
	if patch.Empty() {
		return nil, apperror.ValidationFailed("", "No data")
	}
	var err error
	if patch.Title, err = optionalText("title", patch.Title, MaxTitleLength); err != nil {
		return nil, err
	}
	if patch.Category, err = optionalText("category", patch.Category, 0); err != nil {
		return nil, err
	}
	if patch.Instructions, err = optionalText("instructions", patch.Instructions, 0); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, caller, id); err != nil {
		return nil, err
	}

	r, err := s.recipes.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated", slog.Int64("id", id), slog.String("by", caller.Username))
	return r, nil
}

func (s *RecipeService) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("recipe deleted", slog.Int64("id", id), slog.String("by", caller.Username))
	return nil
}

// authorize fails with NotFound if the recipe is missing and Forbidden if
// the caller neither owns it nor is an admin.
func (s *RecipeService) authorize(ctx context.Context, caller auth.Identity, id int64) error {
	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return err
	}
	existing, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(caller, uid, existing.UserID) {
		return apperror.Forbidden("You can only modify your own recipes")
	}
	return nil
}
