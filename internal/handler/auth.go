package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mealdb/internal/model"
	"github.com/sakif/mealdb/internal/service"
)

// AuthHandler exchanges credentials for bearer tokens.
//
//	POST /auth/token     {username, password}          → 200 {token}
//	POST /auth/register  {username, password, ...}     → 201 {token}
//
// Both routes are public. The token goes back in the body; clients send it
// as "Authorization: Bearer <token>" from then on.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// HandleRegister creates a regular account. An isAdmin field in the body is
// accepted and ignored.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var nu model.NewUser
	if err := decodeJSON(r, &nu); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.auth.Register(r.Context(), nu)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}
