package sqldb

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/model"
)

func TestFavorite_AddExistsRemove(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	favs := db.Favorites()
	u := createTestUser(t, db, "alice")

	ok, err := favs.Exists(ctx, u.ID, 52772)
	if err != nil || ok {
		t.Fatalf("Exists() before add = %v, %v; want false", ok, err)
	}

	f := model.Favorite{RecipeID: 52772, Title: "Teriyaki Chicken", Category: "Chicken", Instructions: "Grill"}
	if err := favs.Add(ctx, u.ID, f); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ok, err = favs.Exists(ctx, u.ID, 52772)
	if err != nil || !ok {
		t.Fatalf("Exists() after add = %v, %v; want true", ok, err)
	}

	if err := favs.Remove(ctx, u.ID, 52772); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	ok, _ = favs.Exists(ctx, u.ID, 52772)
	if ok {
		t.Error("Exists() after remove = true")
	}

	if err := favs.Remove(ctx, u.ID, 52772); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

// Adding the same (user, recipe) twice leaves one row holding the second
// snapshot.
func TestFavorite_AddConvergesToLastSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")

	first := model.Favorite{RecipeID: 7, Title: "Old", Category: "Old", Instructions: "Old"}
	second := model.Favorite{RecipeID: 7, Title: "New", Category: "New", Instructions: "New"}

	if err := db.Favorites().Add(ctx, u.ID, first); err != nil {
		t.Fatalf("Add(first) error = %v", err)
	}
	if err := db.Favorites().Add(ctx, u.ID, second); err != nil {
		t.Fatalf("Add(second) error = %v", err)
	}

	list, err := db.Favorites().ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListByUser() returned %d rows, want 1", len(list))
	}
	if list[0] != second {
		t.Errorf("favorite = %+v, want %+v", list[0], second)
	}
}

func TestFavorite_ConcurrentAddsConverge(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.Favorites().Add(ctx, u.ID, model.Favorite{RecipeID: 1, Title: "T", Category: "C", Instructions: "I"})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Add() error = %v", err)
		}
	}

	list, _ := db.Favorites().ListByUser(ctx, u.ID)
	if len(list) != 1 {
		t.Errorf("ListByUser() returned %d rows, want 1", len(list))
	}
}

func TestFavorite_ScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if err := db.Favorites().Add(ctx, alice.ID, model.Favorite{RecipeID: 1, Title: "T", Category: "C", Instructions: "I"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	ok, _ := db.Favorites().Exists(ctx, bob.ID, 1)
	if ok {
		t.Error("bob sees alice's favorite")
	}
	if err := db.Favorites().Remove(ctx, bob.ID, 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("bob removing alice's favorite: error = %v, want ErrNotFound", err)
	}
	list, _ := db.Favorites().ListByUser(ctx, bob.ID)
	if len(list) != 0 {
		t.Errorf("bob's favorites = %+v, want none", list)
	}
}
