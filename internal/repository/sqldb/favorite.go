package sqldb

import (
	"context"
	"fmt"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

var _ repository.FavoriteRepository = (*FavoriteStore)(nil)

// FavoriteStore is the user_favorites table.
type FavoriteStore struct {
	db *DB
}

func (db *DB) Favorites() *FavoriteStore {
	return &FavoriteStore{db: db}
}

// Add inserts the favorite or, if (userID, f.RecipeID) is already there,
// replaces its snapshot.
//
// WHY ON CONFLICT AND NOT "SELECT, THEN INSERT OR UPDATE"?
// Two requests favoriting the same recipe at once would both see "no row"
// and both INSERT; one would then fail on the UNIQUE constraint. ON CONFLICT
// makes the check and the write one atomic statement, so concurrent adds
// converge on a single row holding whichever snapshot came last.
//
// "excluded" is the row that would have been inserted.
func (s *FavoriteStore) Add(ctx context.Context, userID int64, f model.Favorite) error {
	_, err := s.db.exec(ctx,
		`INSERT INTO user_favorites (user_id, recipe_id, title, category, instructions)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, recipe_id) DO UPDATE
		 SET title = excluded.title,
		     category = excluded.category,
		     instructions = excluded.instructions`,
		userID, f.RecipeID, f.Title, f.Category, f.Instructions,
	)
	if err != nil {
		return fmt.Errorf("sqldb: adding favorite %d for user %d: %w", f.RecipeID, userID, err)
	}
	return nil
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, recipeID int64) error {
	result, err := s.db.exec(ctx,
		`DELETE FROM user_favorites WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("sqldb: removing favorite %d for user %d: %w", recipeID, userID, err)
	}
	return requireAffected(result, apperror.NotFound("favorite recipe", itoa(recipeID)))
}

func (s *FavoriteStore) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var n int
	err := s.db.queryRow(ctx,
		`SELECT COUNT(*) FROM user_favorites WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqldb: checking favorite %d for user %d: %w", recipeID, userID, err)
	}
	return n > 0, nil
}

// ListByUser returns the user's favorites, oldest first.
func (s *FavoriteStore) ListByUser(ctx context.Context, userID int64) ([]model.Favorite, error) {
	rows, err := s.db.query(ctx,
		`SELECT recipe_id, title, category, instructions
		 FROM user_favorites
		 WHERE user_id = ?
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing favorites for user %d: %w", userID, err)
	}
	defer rows.Close()

	favorites := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.RecipeID, &f.Title, &f.Category, &f.Instructions); err != nil {
			return nil, fmt.Errorf("sqldb: scanning favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating favorites: %w", err)
	}
	return favorites, nil
}
