package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

var _ repository.MealPlanRepository = (*MealPlanStore)(nil)

// MealPlanStore is the meal_plans table.
//
// The recipes column holds the client's JSON array as-is: JSONB on
// PostgreSQL, TEXT on SQLite. It is written as a string (both drivers bind
// that to either column type) and read back as bytes.
type MealPlanStore struct {
	db *DB
}

func (db *DB) MealPlans() *MealPlanStore {
	return &MealPlanStore{db: db}
}

const mealPlanColumns = `id, title, recipes, user_id`

func scanMealPlan(s scanner) (model.MealPlan, error) {
	var (
		mp      model.MealPlan
		recipes []byte
	)
	if err := s.Scan(&mp.ID, &mp.Title, &recipes, &mp.UserID); err != nil {
		return mp, err
	}
	mp.Recipes = json.RawMessage(recipes)
	return mp, nil
}

// recipesArg turns the raw JSON into a bind value, defaulting to "[]".
func recipesArg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func (s *MealPlanStore) Create(ctx context.Context, mp *model.MealPlan) error {
	mp.Recipes = json.RawMessage(recipesArg(mp.Recipes))
	err := s.db.queryRow(ctx,
		`INSERT INTO meal_plans (title, recipes, user_id)
		 VALUES (?, ?, ?)
		 RETURNING id`,
		mp.Title, string(mp.Recipes), mp.UserID,
	).Scan(&mp.ID)
	if err != nil {
		return fmt.Errorf("sqldb: inserting meal plan: %w", err)
	}
	return nil
}

func (s *MealPlanStore) GetByID(ctx context.Context, id int64) (*model.MealPlan, error) {
	mp, err := scanMealPlan(s.db.queryRow(ctx,
		`SELECT `+mealPlanColumns+` FROM meal_plans WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("meal plan", itoa(id))
		}
		return nil, fmt.Errorf("sqldb: getting meal plan %d: %w", id, err)
	}
	return &mp, nil
}

func (s *MealPlanStore) ListByUser(ctx context.Context, userID int64) ([]model.MealPlan, error) {
	rows, err := s.db.query(ctx,
		`SELECT `+mealPlanColumns+` FROM meal_plans WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing meal plans for user %d: %w", userID, err)
	}
	defer rows.Close()

	plans := []model.MealPlan{}
	for rows.Next() {
		mp, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("sqldb: scanning meal plan: %w", err)
		}
		plans = append(plans, mp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating meal plans: %w", err)
	}
	return plans, nil
}

func (s *MealPlanStore) Update(ctx context.Context, id int64, patch repository.MealPlanPatch) (*model.MealPlan, error) {
	values := map[string]any{}
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Recipes != nil {
		values["recipes"] = recipesArg(patch.Recipes)
	}

	set, args, err := setClause(mealPlanFields, values)
	if err != nil {
		return nil, err
	}

	mp, err := scanMealPlan(s.db.queryRow(ctx,
		`UPDATE meal_plans SET `+set+` WHERE id = ? RETURNING `+mealPlanColumns,
		append(args, id)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("meal plan", itoa(id))
		}
		return nil, fmt.Errorf("sqldb: updating meal plan %d: %w", id, err)
	}
	return &mp, nil
}

func (s *MealPlanStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.exec(ctx, `DELETE FROM meal_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqldb: deleting meal plan %d: %w", id, err)
	}
	return requireAffected(result, apperror.NotFound("meal plan", itoa(id)))
}
