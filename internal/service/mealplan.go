package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

// MealPlanService manages meal plans. A plan is visible to and changeable by
// its owner and admins only.
type MealPlanService struct {
	plans  repository.MealPlanRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewMealPlanService(plans repository.MealPlanRepository, users repository.UserRepository, logger *slog.Logger) *MealPlanService {
	return &MealPlanService{
		plans:  plans,
		users:  users,
		logger: logger,
	}
}

// MealPlanInput is the body of a create request. Recipes may be omitted
// (an empty plan) but if present must be a JSON array.
type MealPlanInput struct {
	Title   string          `json:"title"`
	Recipes json.RawMessage `json:"recipes"`
}

func (s *MealPlanService) Create(ctx context.Context, caller auth.Identity, in MealPlanInput) (*model.MealPlan, error) {
	title, err := requireText("title", in.Title, MaxTitleLength)
	if err != nil {
		return nil, err
	}
	recipes, err := jsonArray("recipes", in.Recipes)
	if err != nil {
		return nil, err
	}

	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}

	mp := &model.MealPlan{Title: title, Recipes: recipes, UserID: uid}
	if err := s.plans.Create(ctx, mp); err != nil {
		return nil, fmt.Errorf("service/mealplan: creating: %w", err)
	}

	s.logger.Info("meal plan created", slog.Int64("id", mp.ID), slog.String("owner", caller.Username))
	return mp, nil
}

// List returns the caller's own plans.
func (s *MealPlanService) List(ctx context.Context, caller auth.Identity) ([]model.MealPlan, error) {
	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("service/mealplan: listing: %w", err)
	}
	return plans, nil
}

func (s *MealPlanService) Get(ctx context.Context, caller auth.Identity, id int64) (*model.MealPlan, error) {
	return s.fetchOwned(ctx, caller, id)
}

func (s *MealPlanService) Update(ctx context.Context, caller auth.Identity, id int64, patch repository.MealPlanPatch) (*model.MealPlan, error) {
	if patch.Empty() {
		return nil, apperror.ValidationFailed("", "No data")
	}
	var err error
	if patch.Title, err = optionalText("title", patch.Title, MaxTitleLength); err != nil {
		return nil, err
	}
	if patch.Recipes != nil {
		if _, err := jsonArray("recipes", patch.Recipes); err != nil {
			return nil, err
		}
	}

	if _, err := s.fetchOwned(ctx, caller, id); err != nil {
		return nil, err
	}

	mp, err := s.plans.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("meal plan updated", slog.Int64("id", id), slog.String("by", caller.Username))
	return mp, nil
}

func (s *MealPlanService) Delete(ctx context.Context, caller auth.Identity, id int64) error {
	if _, err := s.fetchOwned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("meal plan deleted", slog.Int64("id", id), slog.String("by", caller.Username))
	return nil
}

// fetchOwned loads a plan the caller is allowed to see.
func (s *MealPlanService) fetchOwned(ctx context.Context, caller auth.Identity, id int64) (*model.MealPlan, error) {
	uid, err := callerID(ctx, s.users, caller)
	if err != nil {
		return nil, err
	}
	mp, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(caller, uid, mp.UserID) {
		return nil, apperror.Forbidden("You can only access your own meal plans")
	}
	return mp, nil
}
