// Package service contains the business rules of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, checks ownership, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services never see an *http.Request. The caller's identity arrives as an
// auth.Identity value, already proven by the middleware, and errors leave as
// apperror values that the handler layer maps to status codes.
//
// DEPENDENCY INJECTION:
// Every service takes repository interfaces, not *sqldb.DB. Tests pass
// in-memory fakes (see fakes_test.go); main wires the real stores.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/repository"
)

// Validation limits.
const (
	MaxUsernameLength = 25
	MinPasswordLength = 5
	MaxPasswordLength = 72 // bcrypt's input limit, in bytes
	MaxTitleLength    = 255
	MaxListLimit      = 100
)

// callerID resolves an authenticated identity to its user id.
//
// A token stays valid after its user is deleted, so a verified identity can
// still name nobody. That is treated as "not authenticated" rather than as a
// missing resource.
func callerID(ctx context.Context, users repository.UserRepository, caller auth.Identity) (int64, error) {
	if !caller.Authenticated() {
		return 0, apperror.Unauthorized("Unauthorized")
	}
	id, err := users.IDByUsername(ctx, caller.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return 0, apperror.Unauthorized("Unauthorized")
		}
		return 0, fmt.Errorf("resolving caller %s: %w", caller.Username, err)
	}
	return id, nil
}

// canModify reports whether caller (already resolved to callerID) may change
// a row owned by ownerID.
func canModify(caller auth.Identity, callerID, ownerID int64) bool {
	return caller.IsAdmin || callerID == ownerID
}

// requireText trims s and fails when the result is empty or longer than max
// characters (max 0 means unbounded).
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s must be %d characters or less", field, max))
	}
	return s, nil
}

// optionalText is requireText for patch fields: nil passes through, a
// present value must still be non-blank.
func optionalText(field string, s *string, max int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v, err := requireText(field, *s, max)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// jsonArray checks raw is a JSON array. Empty input becomes "[]".
func jsonArray(field string, raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return json.RawMessage("[]"), nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil, apperror.ValidationFailed(field, field+" must be a JSON array")
	}
	return raw, nil
}

// listOptions clamps a requested page. limit 0 means "everything".
func listOptions(limit, offset int) repository.ListOptions {
	if limit < 0 {
		limit = 0
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 || limit == 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
