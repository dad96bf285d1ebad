package handlers

import (
	"net/http"
	"strconv"

	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/models"
	"sonorus-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AlbumHandler handles album HTTP requests
type AlbumHandler struct {
	store     *services.Store
	community *services.CommunityService
	lastfm    *services.LastFMClient
}

// NewAlbumHandler creates a new album handler
func NewAlbumHandler(store *services.Store, community *services.CommunityService, lastfm *services.LastFMClient) *AlbumHandler {
	return &AlbumHandler{
		store:     store,
		community: community,
		lastfm:    lastfm,
	}
}

// ListAlbums handles GET /api/v1/albums
func (h *AlbumHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	filter := entity.Filter{}
	if genre := r.URL.Query().Get("genre"); genre != "" {
		filter["genre"] = genre
	}
	if createdBy := r.URL.Query().Get("created_by"); createdBy != "" {
		filter["created_by"] = createdBy
	}

	opts := entity.ListOptions{OrderBy: "created_at", Descending: true}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			opts.Limit = limit
		}
	}

	recs, err := h.store.List(r.Context(), entity.EntityAlbum, actor, filter, opts)
	if err != nil {
		respondAppError(w, err)
		return
	}

	albums := make([]models.Album, 0, len(recs))
	for _, rec := range recs {
		albums = append(albums, models.AlbumFromRecord(rec))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"albums": albums,
		"total":  len(albums),
	})
}

// GetAlbum handles GET /api/v1/albums/{album_id}
func (h *AlbumHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	albumID := chi.URLParam(r, "album_id")

	rec, err := h.store.Get(r.Context(), entity.EntityAlbum, actor, albumID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.AlbumFromRecord(rec))
}

// GetAlbumScores handles GET /api/v1/albums/{album_id}/scores
func (h *AlbumHandler) GetAlbumScores(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "album_id")

	scores, reviewCount, err := h.community.AlbumScores(r.Context(), albumID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"scores":       scores,
		"review_count": reviewCount,
	})
}

// CreateAlbum handles POST /api/v1/albums
func (h *AlbumHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var payload map[string]any
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Create(r.Context(), entity.EntityAlbum, actor, payload)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("album_id", rec.ID).
		Str("created_by", rec.CreatedBy).
		Msg("Album created")

	respondJSON(w, http.StatusCreated, models.AlbumFromRecord(rec))
}

// UpdateAlbum handles PATCH /api/v1/albums/{album_id}
func (h *AlbumHandler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	albumID := chi.URLParam(r, "album_id")

	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Update(r.Context(), entity.EntityAlbum, actor, albumID, patch)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, models.AlbumFromRecord(rec))
}

// DeleteAlbum handles DELETE /api/v1/albums/{album_id}
func (h *AlbumHandler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())
	albumID := chi.URLParam(r, "album_id")

	if err := h.store.Delete(r.Context(), entity.EntityAlbum, actor, albumID); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchMetadata handles GET /api/v1/metadata/albums?q=
func (h *AlbumHandler) SearchMetadata(w http.ResponseWriter, r *http.Request) {
	matches, err := h.lastfm.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// GetMetadata handles GET /api/v1/metadata/album?artist=&name=&mbid=
func (h *AlbumHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	artist, name, mbid := q.Get("artist"), q.Get("name"), q.Get("mbid")
	if mbid == "" && (artist == "" || name == "") {
		respondError(w, "artist and name (or mbid) are required", http.StatusBadRequest)
		return
	}

	details, err := h.lastfm.Details(r.Context(), artist, name, mbid)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}
