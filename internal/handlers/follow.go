package handlers

import (
	"net/http"

	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/models"
	"sonorus-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FollowHandler handles follow HTTP requests
type FollowHandler struct {
	store     *services.Store
	community *services.CommunityService
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(store *services.Store, community *services.CommunityService) *FollowHandler {
	return &FollowHandler{
		store:     store,
		community: community,
	}
}

type followRequest struct {
	FollowingEmail string `json:"following_email"`
	FollowingName  string `json:"following_name"`
}

// CreateFollow handles POST /api/v1/follows
func (h *FollowHandler) CreateFollow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var req followRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload := map[string]any{
		"follower_email":  actor.Email,
		"following_email": req.FollowingEmail,
	}
	if req.FollowingName != "" {
		payload["following_name"] = req.FollowingName
	}

	rec, err := h.store.Create(r.Context(), entity.EntityFollow, actor, payload)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("follower", actor.Email).
		Str("following", req.FollowingEmail).
		Msg("Follow created")

	respondJSON(w, http.StatusCreated, models.FollowFromRecord(rec))
}

// ListFollows handles GET /api/v1/follows
func (h *FollowHandler) ListFollows(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	recs, err := h.store.List(r.Context(), entity.EntityFollow, actor,
		entity.Filter{"follower_email": actor.Email}, entity.ListOptions{})
	if err != nil {
		respondAppError(w, err)
		return
	}

	follows := models.FollowsFromRecords(recs)
	respondJSON(w, http.StatusOK, map[string]any{
		"follows": follows,
		"total":   len(follows),
	})
}

// GetFollowState handles GET /api/v1/follows/state?email=
func (h *FollowHandler) GetFollowState(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	target := r.URL.Query().Get("email")
	if target == "" {
		respondError(w, "email is required", http.StatusBadRequest)
		return
	}

	state, err := h.community.FollowState(r.Context(), actor, target)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// DeleteFollow handles DELETE /api/v1/follows/{follow_id}
func (h *FollowHandler) DeleteFollow(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	followID := chi.URLParam(r, "follow_id")

	if err := h.store.Delete(r.Context(), entity.EntityFollow, actor, followID); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
