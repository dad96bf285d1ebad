package handlers

import (
	"net/http"

	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// CriticHandler handles critic directory, profile and feed HTTP requests
type CriticHandler struct {
	community *services.CommunityService
}

// NewCriticHandler creates a new critic handler
func NewCriticHandler(community *services.CommunityService) *CriticHandler {
	return &CriticHandler{community: community}
}

// ListCritics handles GET /api/v1/critics
func (h *CriticHandler) ListCritics(w http.ResponseWriter, r *http.Request) {
	critics, err := h.community.Directory(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"critics": critics,
		"total":   len(critics),
	})
}

// GetCriticProfile handles GET /api/v1/critics/{email}
func (h *CriticHandler) GetCriticProfile(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	profile, err := h.community.CriticProfile(r.Context(), email)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// GetFeed handles GET /api/v1/feed
func (h *CriticHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	feed, err := h.community.Feed(r.Context(), actor)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"feed":  feed,
		"total": len(feed),
	})
}
