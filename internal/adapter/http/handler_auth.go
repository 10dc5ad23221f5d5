package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/admixflow/admixflow/internal/usecase"
	"github.com/gorilla/mux"
)

// AuthService authenticates operators.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*usecase.LoginResponse, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/login", h.Login).Methods("POST")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		BadRequest(w, "Email and password are required")
		return
	}

	resp, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			Unauthorized(w, "Invalid email or password")
			return
		}
		WriteError(w, err)
		return
	}

	Success(w, http.StatusOK, "Login successful", resp)
}
