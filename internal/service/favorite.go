package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

// FavoriteService manages each user's favorites list.
//
// Favorites are always the caller's own: there is no way to read or change
// another user's list, admin or not.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	recipes   repository.RecipeRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewFavoriteService(
	favorites repository.FavoriteRepository,
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		recipes:   recipes,
		users:     users,
		logger:    logger,
	}
}

const msgFavoriteFieldsRequired = "Title, category, and instructions are required."

func (s *FavoriteService) List(ctx context.Context, caller auth.Identity) ([]model.Favorite, error) {
	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}
	favs, err := s.favorites.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("service/favorite: listing: %w", err)
	}
	return favs, nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, caller auth.Identity, recipeID int64) (bool, error) {
	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return false, err
	}
	ok, err := s.favorites.Exists(ctx, uid, recipeID)
	if err != nil {
		return false, fmt.Errorf("service/favorite: checking %d: %w", recipeID, err)
	}
	return ok, nil
}

// FavoriteInput is the snapshot stored with a favorite.
type FavoriteInput struct {
	Title        string `json:"title"`
	Category     string `json:"category"`
	Instructions string `json:"instructions"`
}

// Add favorites recipeID for the caller, storing in's snapshot. Adding a
// recipe that is already a favorite refreshes the snapshot.
//
// If recipeID is also one of the caller's own recipes, that recipe is
// brought up to date with the same content first. For any other id
// (someone else's recipe, a TheMealDB meal) that step matches nothing and is
// skipped.
func (s *FavoriteService) Add(ctx context.Context, caller auth.Identity, recipeID int64, in FavoriteInput) error {
	f := model.Favorite{
		RecipeID:     recipeID,
		Title:        strings.TrimSpace(in.Title),
		Category:     strings.TrimSpace(in.Category),
		Instructions: strings.TrimSpace(in.Instructions),
	}
	if f.Title == "" || f.Category == "" || f.Instructions == "" {
		return apperror.ValidationFailed("", msgFavoriteFieldsRequired)
	}
	if recipeID <= 0 {
		return apperror.ValidationFailed("recipeId", "recipeId must be a positive integer")
	}

	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return err
	}

	err = s.recipes.AddOrUpdate(ctx, &model.Recipe{
		ID:           recipeID,
		Title:        f.Title,
		Category:     f.Category,
		Instructions: f.Instructions,
		UserID:       uid,
	})
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/favorite: refreshing recipe %d: %w", recipeID, err)
	}

	if err := s.favorites.Add(ctx, uid, f); err != nil {
		return fmt.Errorf("service/favorite: adding %d: %w", recipeID, err)
	}

	s.logger.Info("favorite added",
		slog.String("username", caller.Username),
		slog.Int64("recipeId", recipeID),
	)
	return nil
}

func (s *FavoriteService) Remove(ctx context.Context, caller auth.Identity, recipeID int64) error {
	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, uid, recipeID); err != nil {
		return err
	}

	s.logger.Info("favorite removed",
		slog.String("username", caller.Username),
		slog.Int64("recipeId", recipeID),
	)
	return nil
}
