package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mealdb/internal/apperror"
	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/service"
)

// FavoriteHandler serves /favorites. The list always belongs to the caller;
// no route takes a user id.
type FavoriteHandler struct {
	favorites *service.FavoriteService
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

type favoritesResponse struct {
	Recipes []model.Favorite `json:"recipes"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// recipeIDParam reads {recipeId}. Favorites may point at TheMealDB meals
// that have no local row, so a bad id is a client error rather than a
// missing resource.
func recipeIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "recipeId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("recipeId", "recipeId must be a positive integer")
	}
	return id, nil
}

// HandleList: GET /favorites
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	favs, err := h.favorites.List(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Recipes: favs})
}

// HandleStatus: GET /favorites/{recipeId}/status
func (h *FavoriteHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ok, err := h.favorites.IsFavorite(r.Context(), auth.IdentityFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": ok})
}

// HandleAdd: POST /favorites/{recipeId} with {title, category, instructions}.
// Posting an existing favorite again replaces its stored snapshot.
func (h *FavoriteHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in service.FavoriteInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	id, err := recipeIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.favorites.Add(r.Context(), auth.IdentityFromContext(r.Context()), id, in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "Recipe added to favorites"})
}

// HandleRemove: DELETE /favorites/{recipeId}
func (h *FavoriteHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := recipeIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Recipe removed from favorites"})
}
