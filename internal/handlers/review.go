package handlers

import (
	"context"
	"net/http"
	"strconv"

	"sonorus-backend/internal/aggregate"
	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/models"
	"sonorus-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	store *services.Store
	hub   *services.FeedHub
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(store *services.Store, hub *services.FeedHub) *ReviewHandler {
	return &ReviewHandler{
		store: store,
		hub:   hub,
	}
}

// ListAlbumReviews handles GET /api/v1/albums/{album_id}/reviews
func (h *ReviewHandler) ListAlbumReviews(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	albumID := chi.URLParam(r, "album_id")

	recs, err := h.store.List(r.Context(), entity.EntityReview, actor,
		entity.Filter{"album_id": albumID}, entity.ListOptions{})
	if err != nil {
		respondAppError(w, err)
		return
	}

	sortMode := r.URL.Query().Get("sort")
	if sortMode == "" {
		sortMode = aggregate.SortRecent
	}
	reviews := aggregate.SortReviews(models.ReviewsFromRecords(recs), sortMode)

	respondJSON(w, http.StatusOK, map[string]any{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// ListReviews handles GET /api/v1/reviews. Without an author filter it lists
// recent reviews across all albums, newest first; limit bounds the result.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	filter := entity.Filter{}
	if author := r.URL.Query().Get("author"); author != "" {
		filter["created_by"] = author
	}

	opts := entity.ListOptions{OrderBy: "created_at", Descending: true}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}

	recs, err := h.store.List(r.Context(), entity.EntityReview, actor, filter, opts)
	if err != nil {
		respondAppError(w, err)
		return
	}

	reviews := models.ReviewsFromRecords(recs)
	respondJSON(w, http.StatusOK, map[string]any{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// CreateReview handles POST /api/v1/albums/{album_id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	albumID := chi.URLParam(r, "album_id")

	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	payload["album_id"] = albumID

	rec, err := h.store.Create(r.Context(), entity.EntityReview, actor, payload)
	if err != nil {
		respondAppError(w, err)
		return
	}

	review := models.ReviewFromRecord(rec)
	log.Info().
		Str("review_id", review.ID).
		Str("album_id", review.AlbumID).
		Str("created_by", review.CreatedBy).
		Msg("Review created")

	go h.broadcast(review, actor)

	respondJSON(w, http.StatusCreated, review)
}

// UpdateReview handles PATCH /api/v1/reviews/{review_id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	reviewID := chi.URLParam(r, "review_id")

	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Update(r.Context(), entity.EntityReview, actor, reviewID, patch)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.ReviewFromRecord(rec))
}

// DeleteReview handles DELETE /api/v1/reviews/{review_id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	reviewID := chi.URLParam(r, "review_id")

	if err := h.store.Delete(r.Context(), entity.EntityReview, actor, reviewID); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// broadcast pushes the new review to connected followers. Runs detached from
// the request; the album lookup is best effort.
func (h *ReviewHandler) broadcast(review models.Review, actor *entity.Actor) {
	ctx := context.Background()

	var album *models.Album
	if rec, err := h.store.Get(ctx, entity.EntityAlbum, actor, review.AlbumID); err == nil {
		a := models.AlbumFromRecord(rec)
		album = &a
	}
	h.hub.BroadcastReview(ctx, review, album)
}
