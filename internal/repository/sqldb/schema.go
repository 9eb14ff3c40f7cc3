package sqldb

// SCHEMA:
// Four tables. Every row except a user's own points at users(id) with
// ON DELETE CASCADE, so deleting a user removes their recipes, favorites and
// meal plans in the same statement.
//
// user_favorites.recipe_id is NOT a foreign key: most favorites are meals
// from TheMealDB that have no row in recipes. The favorite keeps its own
// copy of title, category and instructions for that reason.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		username   TEXT NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL,
		is_admin   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT NOT NULL,
		category     TEXT NOT NULL,
		instructions TEXT NOT NULL,
		user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_user_id ON recipes(user_id)`,
	`CREATE TABLE IF NOT EXISTS user_favorites (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipe_id    INTEGER NOT NULL,
		title        TEXT NOT NULL,
		category     TEXT NOT NULL,
		instructions TEXT NOT NULL,
		UNIQUE (user_id, recipe_id)
	)`,
	`CREATE TABLE IF NOT EXISTS meal_plans (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		title   TEXT NOT NULL,
		recipes TEXT NOT NULL DEFAULT '[]',
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meal_plans_user_id ON meal_plans(user_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         SERIAL PRIMARY KEY,
		username   VARCHAR(25) NOT NULL UNIQUE,
		password   TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		email      TEXT NOT NULL,
		is_admin   BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id           SERIAL PRIMARY KEY,
		title        VARCHAR(255) NOT NULL,
		category     TEXT NOT NULL,
		instructions TEXT NOT NULL,
		user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recipes_user_id ON recipes(user_id)`,
	`CREATE TABLE IF NOT EXISTS user_favorites (
		id           SERIAL PRIMARY KEY,
		user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		recipe_id    BIGINT NOT NULL,
		title        TEXT NOT NULL,
		category     TEXT NOT NULL,
		instructions TEXT NOT NULL,
		UNIQUE (user_id, recipe_id)
	)`,
	`CREATE TABLE IF NOT EXISTS meal_plans (
		id      SERIAL PRIMARY KEY,
		title   VARCHAR(255) NOT NULL,
		recipes JSONB NOT NULL DEFAULT '[]',
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meal_plans_user_id ON meal_plans(user_id)`,
}
