package sqldb

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/sakif/mealdb/internal/model"
)

// testBackend is the database newTestDB opens. TestPostgres swaps it to
// rerun the store tests against PostgreSQL.
var testBackend = struct{ driver, dsn string }{SQLite, ":memory:"}

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that lives only as long as its
// connection. The pool is capped at one connection, so every test gets its
// own isolated, empty database that disappears on Close.
//
// A PostgreSQL database outlives the pool, so it is emptied by dropping
// every table before the schema is applied again.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := Connect(ctx, testBackend.driver, testBackend.dsn)
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if db.Dialect() == Postgres {
		if _, err := db.exec(ctx, `DROP TABLE IF EXISTS meal_plans, user_favorites, recipes, users CASCADE`); err != nil {
			t.Fatalf("failed to reset test db: %v", err)
		}
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

// jsonEqual compares two JSON documents by value. PostgreSQL's JSONB
// normalises spacing and key order, so byte comparison is too strict.
func jsonEqual(t *testing.T, a, b json.RawMessage) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		t.Fatalf("invalid JSON %s: %v", a, err)
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		t.Fatalf("invalid JSON %s: %v", b, err)
	}
	return reflect.DeepEqual(va, vb)
}

// createTestUser registers a user with a placeholder digest.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	u, err := db.Users().Create(context.Background(), model.NewUser{
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Email:     username + "@example.com",
	}, "$2a$04$placeholderdigest")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "whatever"); err == nil {
		t.Fatal("Open() should reject an unsupported driver")
	}
}

func TestDialect(t *testing.T) {
	db := newTestDB(t)
	if got := db.Dialect(); got != testBackend.driver {
		t.Errorf("Dialect() = %q, want %q", got, testBackend.driver)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Open already migrated once; a second run must be a no-op.
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)

	// user 999 does not exist; with foreign_keys=ON this must fail.
	err := db.Recipes().Create(context.Background(), &model.Recipe{
		Title: "Orphan", Category: "None", Instructions: "None", UserID: 999,
	})
	if err == nil {
		t.Fatal("Create() should fail for a recipe whose owner does not exist")
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, db, "alice")

	r := &model.Recipe{Title: "Soup", Category: "Starter", Instructions: "Boil", UserID: u.ID}
	if err := db.Recipes().Create(ctx, r); err != nil {
		t.Fatalf("Create recipe: %v", err)
	}
	if err := db.Favorites().Add(ctx, u.ID, model.Favorite{RecipeID: 52772, Title: "T", Category: "C", Instructions: "I"}); err != nil {
		t.Fatalf("Add favorite: %v", err)
	}

	if err := db.Users().Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete user: %v", err)
	}

	if _, err := db.Recipes().GetByID(ctx, r.ID); err == nil {
		t.Error("recipe survived its owner's deletion")
	}
	favs, err := db.Favorites().ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(favs) != 0 {
		t.Errorf("favorites survived their owner's deletion: %+v", favs)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		in      string
		want    string
	}{
		{"sqlite untouched", SQLite, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = ? AND b = ?"},
		{"postgres numbered", Postgres, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = $1 AND b = $2"},
		{"postgres no params", Postgres, "SELECT 1", "SELECT 1"},
		{"postgres ten params", Postgres, "?,?,?,?,?,?,?,?,?,?", "$1,$2,$3,$4,$5,$6,$7,$8,$9,$10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &DB{dialect: tt.dialect}
			if got := db.rebind(tt.in); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
