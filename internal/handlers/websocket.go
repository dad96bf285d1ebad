package handlers

import (
	"net/http"

	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles live feed connections
type WebSocketHandler struct {
	hub         *services.FeedHub
	authService *services.AuthService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.FeedHub, authService *services.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// HandleFeed handles GET /ws/feed. The client authenticates with a token
// query parameter and then receives review_created events for identities it
// follows until it disconnects.
func (h *WebSocketHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ValidateWebSocketToken(r.URL.Query().Get("token"), h.authService)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(actor.Email, conn)
	defer h.hub.Unregister(actor.Email)

	log.Info().Str("email", actor.Email).Msg("Feed connection established")

	// The connection is push-only; reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("email", actor.Email).Msg("Feed connection error")
			}
			break
		}
	}
}
