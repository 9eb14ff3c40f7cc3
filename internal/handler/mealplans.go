package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/repository"
	"github.com/sakif/mealdb/internal/service"
)

// MealPlanHandler serves /meal-plans. Same envelope as recipes.
type MealPlanHandler struct {
	plans  *service.MealPlanService
	logger *slog.Logger
}

func NewMealPlanHandler(plans *service.MealPlanService, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, logger: logger}
}

type mealPlanResponse struct {
	Success  bool            `json:"success"`
	MealPlan *model.MealPlan `json:"mealPlan"`
}

type mealPlansResponse struct {
	Success   bool             `json:"success"`
	MealPlans []model.MealPlan `json:"mealPlans"`
}

func (h *MealPlanHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.MealPlanInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	mp, err := h.plans.Create(r.Context(), auth.IdentityFromContext(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mealPlanResponse{Success: true, MealPlan: mp})
}

func (h *MealPlanHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mealPlansResponse{Success: true, MealPlans: plans})
}

func (h *MealPlanHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "meal plan")
	if err != nil {
		writeError(w, err)
		return
	}

	mp, err := h.plans.Get(r.Context(), auth.IdentityFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mealPlanResponse{Success: true, MealPlan: mp})
}

func (h *MealPlanHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "meal plan")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch repository.MealPlanPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	mp, err := h.plans.Update(r.Context(), auth.IdentityFromContext(r.Context()), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mealPlanResponse{Success: true, MealPlan: mp})
}

func (h *MealPlanHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "meal plan")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.plans.Delete(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
