// Package http provides the HTTP handlers and router of the profile API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/models"
	"github.com/atinyakov/ProfileDesk/internal/service"
)

// UserService defines the registration operation required by AuthHandler.
type UserService interface {
	Register(ctx context.Context, role models.Role) (models.User, error)
}

// TokenIssuer signs bearer tokens for registered users.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// AuthHandler handles account registration.
type AuthHandler struct {
	Users  UserService
	Tokens TokenIssuer
	Log    *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	// Role is "vendor" or "influencer". Admins are provisioned by the operator.
	Role models.Role `json:"role"`
}

// Register handles POST /user/register. It creates a user with a fresh ID
// and responds with the ID, role and a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			http.Error(w, "invalid role", http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrRoleNotAllowed):
			http.Error(w, "role cannot be self-registered", http.StatusForbidden)
			return
		}
		logger(h.Log).Error("register user", zap.Error(err))
		http.Error(w, "failed to save user", http.StatusInternalServerError)
		return
	}

	token, err := h.Tokens.Generate(user)
	if err != nil {
		logger(h.Log).Error("generate token", zap.Error(err))
		http.Error(w, "failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.Registration{UserID: user.ID, Role: user.Role, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
