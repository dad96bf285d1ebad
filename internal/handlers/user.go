package handlers

import (
	"net/http"

	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles account and profile HTTP requests
type UserHandler struct {
	authService   *services.AuthService
	avatarService *services.AvatarService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *services.AuthService, avatarService *services.AvatarService) *UserHandler {
	return &UserHandler{
		authService:   authService,
		avatarService: avatarService,
	}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// SignUp handles POST /api/v1/auth/signup
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("email", user.Email).Msg("User signed up")
	respondJSON(w, http.StatusCreated, user)
}

// SignIn handles POST /api/v1/auth/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	user, err := h.authService.GetProfile(r.Context(), actor.Email)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateProfile handles PATCH /api/v1/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var req profileUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.UpdateProfile(r.Context(), actor.Email, req.DisplayName, req.AvatarURL); err != nil {
		respondAppError(w, err)
		return
	}

	user, err := h.authService.GetProfile(r.Context(), actor.Email)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UploadAvatar handles POST /api/v1/me/avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	if err := r.ParseMultipartForm(services.MaxAvatarSize + 1024); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, "avatar file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.avatarService.Upload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		respondAppError(w, err)
		return
	}

	if err := h.authService.UpdateProfile(r.Context(), actor.Email, nil, &url); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("email", actor.Email).
		Str("avatar_url", url).
		Msg("Avatar uploaded")

	respondJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}
