package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

var _ repository.RecipeRepository = (*RecipeStore)(nil)

// RecipeStore is the recipes table.
type RecipeStore struct {
	db *DB
}

func (db *DB) Recipes() *RecipeStore {
	return &RecipeStore{db: db}
}

const recipeColumns = `id, title, category, instructions, user_id`

func scanRecipe(s scanner) (model.Recipe, error) {
	var r model.Recipe
	err := s.Scan(&r.ID, &r.Title, &r.Category, &r.Instructions, &r.UserID)
	return r, err
}

// Create inserts r and fills in r.ID.
func (s *RecipeStore) Create(ctx context.Context, r *model.Recipe) error {
	err := s.db.queryRow(ctx,
		`INSERT INTO recipes (title, category, instructions, user_id)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		r.Title, r.Category, r.Instructions, r.UserID,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("sqldb: inserting recipe: %w", err)
	}
	return nil
}

func (s *RecipeStore) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	r, err := scanRecipe(s.db.queryRow(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", itoa(id))
		}
		return nil, fmt.Errorf("sqldb: getting recipe %d: %w", id, err)
	}
	return &r, nil
}

func (s *RecipeStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Recipe, error) {
	q, args := paginate(`SELECT `+recipeColumns+` FROM recipes ORDER BY id`, opts)

	rows, err := s.db.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing recipes: %w", err)
	}
	defer rows.Close()

	recipes := []model.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("sqldb: scanning recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating recipes: %w", err)
	}
	return recipes, nil
}

// AddOrUpdate inserts when r.ID is zero, and otherwise overwrites the
// recipe's content only where both id and owner match. A recipe owned by
// someone else is indistinguishable from a missing one: NotFound.
func (s *RecipeStore) AddOrUpdate(ctx context.Context, r *model.Recipe) error {
	if r.ID == 0 {
		return s.Create(ctx, r)
	}

	result, err := s.db.exec(ctx,
		`UPDATE recipes
		 SET title = ?, category = ?, instructions = ?
		 WHERE id = ? AND user_id = ?`,
		r.Title, r.Category, r.Instructions, r.ID, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqldb: updating recipe %d: %w", r.ID, err)
	}
	return requireAffected(result, apperror.NotFound("recipe", itoa(r.ID)))
}

func (s *RecipeStore) Update(ctx context.Context, id int64, patch repository.RecipePatch) (*model.Recipe, error) {
	values := map[string]any{}
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Category != nil {
		values["category"] = *patch.Category
	}
	if patch.Instructions != nil {
		values["instructions"] = *patch.Instructions
	}

	set, args, err := setClause(recipeFields, values)
	if err != nil {
		return nil, err
	}

	r, err := scanRecipe(s.db.queryRow(ctx,
		`UPDATE recipes SET `+set+` WHERE id = ? RETURNING `+recipeColumns,
		append(args, id)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", itoa(id))
		}
		return nil, fmt.Errorf("sqldb: updating recipe %d: %w", id, err)
	}
	return &r, nil
}

func (s *RecipeStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.exec(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqldb: deleting recipe %d: %w", id, err)
	}
	return requireAffected(result, apperror.NotFound("recipe", itoa(id)))
}
