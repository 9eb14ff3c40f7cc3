package sqldb

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
)

func createTestRecipe(t *testing.T, db *DB, userID int64, title string) *model.Recipe {
	t.Helper()
	r := &model.Recipe{Title: title, Category: "Dessert", Instructions: "Bake it", UserID: userID}
	if err := db.Recipes().Create(context.Background(), r); err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return r
}

func TestRecipeCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "alice")

	r := createTestRecipe(t, db, u.ID, "Apple Pie")
	if r.ID == 0 {
		t.Fatal("Create() did not assign an id")
	}

	got, err := db.Recipes().GetByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got != *r {
		t.Errorf("GetByID() = %+v, want %+v", *got, *r)
	}
}

func TestRecipe_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	recipes := db.Recipes()

	checks := map[string]error{}
	_, checks["GetByID"] = recipes.GetByID(ctx, -1)
	_, checks["Update"] = recipes.Update(ctx, -1, repository.RecipePatch{Title: strPtr("x")})
	checks["Delete"] = recipes.Delete(ctx, -1)

	for name, err := range checks {
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("%s(-1) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestRecipeList(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "alice")
	createTestRecipe(t, db, u.ID, "First")
	createTestRecipe(t, db, u.ID, "Second")

	recipes, err := db.Recipes().List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recipes) != 2 || recipes[0].Title != "First" || recipes[1].Title != "Second" {
		t.Errorf("List() = %+v", recipes)
	}
}

func TestRecipeAddOrUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	t.Run("zero id inserts", func(t *testing.T) {
		r := &model.Recipe{Title: "New", Category: "C", Instructions: "I", UserID: alice.ID}
		if err := db.Recipes().AddOrUpdate(ctx, r); err != nil {
			t.Fatalf("AddOrUpdate() error = %v", err)
		}
		if r.ID == 0 {
			t.Error("AddOrUpdate() insert did not assign an id")
		}
	})

	t.Run("owner updates", func(t *testing.T) {
		r := createTestRecipe(t, db, alice.ID, "Before")
		upd := &model.Recipe{ID: r.ID, Title: "After", Category: "C2", Instructions: "I2", UserID: alice.ID}
		if err := db.Recipes().AddOrUpdate(ctx, upd); err != nil {
			t.Fatalf("AddOrUpdate() error = %v", err)
		}
		got, _ := db.Recipes().GetByID(ctx, r.ID)
		if got.Title != "After" || got.Category != "C2" || got.Instructions != "I2" {
			t.Errorf("recipe after update = %+v", got)
		}
	})

	t.Run("non-owner cannot overwrite", func(t *testing.T) {
		r := createTestRecipe(t, db, alice.ID, "Alice's")
		upd := &model.Recipe{ID: r.ID, Title: "Bob's now", Category: "C", Instructions: "I", UserID: bob.ID}
		if err := db.Recipes().AddOrUpdate(ctx, upd); !errors.Is(err, apperror.ErrNotFound) {
			t.Fatalf("AddOrUpdate() error = %v, want ErrNotFound", err)
		}
		got, _ := db.Recipes().GetByID(ctx, r.ID)
		if got.Title != "Alice's" {
			t.Errorf("recipe was overwritten by a non-owner: %+v", got)
		}
	})
}

func TestRecipeUpdate_Partial(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "alice")
	r := createTestRecipe(t, db, u.ID, "Pie")

	got, err := db.Recipes().Update(context.Background(), r.ID, repository.RecipePatch{Category: strPtr("Pastry")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Category != "Pastry" || got.Title != "Pie" || got.Instructions != "Bake it" {
		t.Errorf("Update() = %+v", got)
	}

	if _, err := db.Recipes().Update(context.Background(), r.ID, repository.RecipePatch{}); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update(empty) error = %v, want ErrValidation", err)
	}
}

func TestRecipeDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")
	r := createTestRecipe(t, db, u.ID, "Pie")

	if err := db.Recipes().Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Recipes().GetByID(ctx, r.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}
