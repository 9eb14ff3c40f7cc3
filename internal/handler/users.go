package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
	"github.com/sakif/mealdb/internal/service"
)

// UserHandler serves the account routes. Access control (admin for the
// collection, self-or-admin for a single user) is applied by middleware in
// the router, so every method here can assume the caller is allowed.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList: GET /users?limit=&offset=
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// HandleCreate: POST /users (admin). Unlike /auth/register, isAdmin in the
// body is honoured.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var nu model.NewUser
	if err := decodeJSON(r, &nu); err != nil {
		writeError(w, err)
		return
	}

	user, token, err := h.users.Create(r.Context(), nu)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

// HandleGet: GET /users/{username}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleUpdate: PATCH /users/{username}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch repository.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "username"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleDelete: DELETE /users/{username}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.users.Delete(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": username})
}
