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

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore is the users table.
type UserStore struct {
	db *DB
}

// Users returns the user repository backed by db.
func (db *DB) Users() *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, first_name, last_name, email, is_admin`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	return u, err
}

// Create inserts a user. The username's UNIQUE constraint is the final word
// on duplicates; the service's earlier Exists check only saves a bcrypt
// round in the common case.
func (s *UserStore) Create(ctx context.Context, nu model.NewUser, passwordHash string) (*model.User, error) {
	row := s.db.queryRow(ctx,
		`INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		nu.Username, passwordHash, nu.FirstName, nu.LastName, nu.Email, nu.IsAdmin,
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Duplicate("username", nu.Username)
		}
		return nil, fmt.Errorf("sqldb: inserting user %s: %w", nu.Username, err)
	}
	return &u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(s.db.queryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBy("user", "username", username)
		}
		return nil, fmt.Errorf("sqldb: getting user %s: %w", username, err)
	}
	return &u, nil
}

func (s *UserStore) GetAuthByUsername(ctx context.Context, username string) (*model.UserAuth, error) {
	var ua model.UserAuth
	err := s.db.queryRow(ctx,
		`SELECT `+userColumns+`, password FROM users WHERE username = ?`, username,
	).Scan(&ua.ID, &ua.Username, &ua.FirstName, &ua.LastName, &ua.Email, &ua.IsAdmin, &ua.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBy("user", "username", username)
		}
		return nil, fmt.Errorf("sqldb: getting credentials for %s: %w", username, err)
	}
	return &ua, nil
}

func (s *UserStore) IDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.db.queryRow(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NotFoundBy("user", "username", username)
		}
		return 0, fmt.Errorf("sqldb: resolving user id for %s: %w", username, err)
	}
	return id, nil
}

func (s *UserStore) Exists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.queryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqldb: checking user %s: %w", username, err)
	}
	return n > 0, nil
}

// List returns users ordered by username.
func (s *UserStore) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY username`
	q, args := paginate(q, opts)

	rows, err := s.db.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqldb: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqldb: scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqldb: iterating users: %w", err)
	}
	return users, nil
}

// Update applies a partial patch. A patch with no fields fails before any
// query runs.
func (s *UserStore) Update(ctx context.Context, username string, patch repository.UserPatch) (*model.User, error) {
	values := map[string]any{}
	if patch.FirstName != nil {
		values["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		values["lastName"] = *patch.LastName
	}
	if patch.Email != nil {
		values["email"] = *patch.Email
	}
	if patch.Password != nil {
		values["password"] = *patch.Password
	}

	set, args, err := setClause(userFields, values)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(s.db.queryRow(ctx,
		`UPDATE users SET `+set+` WHERE username = ? RETURNING `+userColumns,
		append(args, username)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBy("user", "username", username)
		}
		return nil, fmt.Errorf("sqldb: updating user %s: %w", username, err)
	}
	return &u, nil
}

// Delete removes the user. Their recipes, favorites and meal plans go with
// them (ON DELETE CASCADE).
func (s *UserStore) Delete(ctx context.Context, username string) error {
	result, err := s.db.exec(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("sqldb: deleting user %s: %w", username, err)
	}
	return requireAffected(result, apperror.NotFoundBy("user", "username", username))
}

// requireAffected returns notFound when the statement touched no rows.
//
// RowsAffected is the only way to tell "deleted it" from "it wasn't there":
// neither UPDATE nor DELETE report an error for zero matching rows.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqldb: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// paginate appends LIMIT/OFFSET when opts asks for them.
func paginate(q string, opts repository.ListOptions) (string, []any) {
	if opts.Limit <= 0 {
		return q, nil
	}
	return q + ` LIMIT ? OFFSET ?`, []any{opts.Limit, max(opts.Offset, 0)}
}
