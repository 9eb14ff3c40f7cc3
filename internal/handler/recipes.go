package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
	"github.com/sakif/mealdb/internal/service"
)

// RecipeHandler serves /recipes. Every route sits behind RequireIdentity.
//
// Successful responses carry "success": true next to the payload, the shape
// existing clients of this API already parse.
type RecipeHandler struct {
	recipes *service.RecipeService
	logger  *slog.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, logger: logger}
}

type recipeResponse struct {
	Success bool          `json:"success"`
	Recipe  *model.Recipe `json:"recipe"`
}

type recipesResponse struct {
	Success bool           `json:"success"`
	Recipes []model.Recipe `json:"recipes"`
}

func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.RecipeInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	recipe, err := h.recipes.Create(r.Context(), auth.IdentityFromContext(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipeResponse{Success: true, Recipe: recipe})
}

func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
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

	recipes, err := h.recipes.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipesResponse{Success: true, Recipes: recipes})
}

func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, err)
		return
	}

	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeResponse{Success: true, Recipe: recipe})
}

func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch repository.RecipePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	recipe, err := h.recipes.Update(r.Context(), auth.IdentityFromContext(r.Context()), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeResponse{Success: true, Recipe: recipe})
}

func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.recipes.Delete(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
