package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/ProfileDesk/internal/middleware"
	"github.com/atinyakov/ProfileDesk/internal/models"
	"github.com/atinyakov/ProfileDesk/internal/service"
)

const maxSectionBody = 1 << 20

// ProfileService defines the profile operations required by ProfileHandler.
type ProfileService interface {
	Profile(ctx context.Context, userID string) (models.ProfileRecord, error)
	SaveSection(ctx context.Context, userID string, section models.Section, body []byte) error
	ClearSection(ctx context.Context, userID string, section models.Section) error
	Completion(ctx context.Context, userID string) (models.CompletionState, error)
}

// ProfileHandler serves the /user/profile/{userId} endpoints.
// A caller may only address its own profile unless it is an admin.
type ProfileHandler struct {
	Profiles ProfileService
	Log      *zap.Logger
}

// Get handles GET /user/profile/{userId}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}
	rec, err := h.Profiles.Profile(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "load profile")
		return
	}
	writeJSON(w, http.StatusOK, models.ProfileEnvelope{ProfileParts: rec})
}

// SaveSection handles POST /user/profile/{userId}/{section}.
func (h *ProfileHandler) SaveSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}
	section, ok := sectionParam(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSectionBody))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Profiles.SaveSection(r.Context(), userID, section, body); err != nil {
		h.fail(w, err, "save section")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSection handles DELETE /user/profile/{userId}/{section}.
func (h *ProfileHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}
	section, ok := sectionParam(w, r)
	if !ok {
		return
	}
	if err := h.Profiles.ClearSection(r.Context(), userID, section); err != nil {
		h.fail(w, err, "clear section")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Completion handles GET /user/profile/{userId}/completion.
func (h *ProfileHandler) Completion(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}
	state, err := h.Profiles.Completion(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "completion")
		return
	}
	writeJSON(w, http.StatusOK, models.NewCompletionReport(state))
}

func (h *ProfileHandler) fail(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, service.ErrSectionNotFound):
		http.Error(w, "section not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidSectionData):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger(h.Log).Error(op, zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := chi.URLParam(r, "userId")
	caller := middleware.GetUserIDFromContext(r.Context())
	if caller == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if caller != userID && middleware.GetRoleFromContext(r.Context()) != models.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return userID, true
}

func sectionParam(w http.ResponseWriter, r *http.Request) (models.Section, bool) {
	section, err := models.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		http.Error(w, "unknown section", http.StatusNotFound)
		return 0, false
	}
	return section, true
}
