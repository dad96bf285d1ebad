package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"sonorus-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// FeedEvent is a message pushed to connected followers.
type FeedEvent struct {
	Type   string         `json:"type"`
	Review *models.Review `json:"review,omitempty"`
	Album  *models.Album  `json:"album,omitempty"`
}

// FeedHub pushes new-review events to connected followers over WebSocket.
// The push is advisory; the HTTP feed endpoint stays the source of truth and
// clients re-fetch after mutations.
type FeedHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	community   *CommunityService
}

// NewFeedHub creates a new feed hub
func NewFeedHub(community *CommunityService) *FeedHub {
	return &FeedHub{
		connections: make(map[string]*websocket.Conn),
		community:   community,
	}
}

// Register registers a connection for a user, replacing any existing one
func (h *FeedHub) Register(email string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[email]; exists {
		existing.Close()
	}
	h.connections[email] = conn

	log.Info().Str("email", email).Msg("Feed connection registered")
}

// Unregister removes a user's connection
func (h *FeedHub) Unregister(email string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[email]; exists {
		conn.Close()
		delete(h.connections, email)
		log.Info().Str("email", email).Msg("Feed connection unregistered")
	}
}

// IsOnline checks if a user has a live feed connection
func (h *FeedHub) IsOnline(email string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[email]
	return exists
}

// SendTo sends an event to a specific user
func (h *FeedHub) SendTo(email string, event FeedEvent) error {
	h.mu.RLock()
	conn, exists := h.connections[email]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", email)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(email)
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// BroadcastReview pushes a newly created review to every connected follower
// of its author.
func (h *FeedHub) BroadcastReview(ctx context.Context, review models.Review, album *models.Album) {
	followers, err := h.community.FollowersOf(ctx, review.CreatedBy)
	if err != nil {
		log.Error().Err(err).Str("author", review.CreatedBy).Msg("Failed to resolve followers for broadcast")
		return
	}

	event := FeedEvent{
		Type:   "review_created",
		Review: &review,
		Album:  album,
	}
	for _, follower := range followers {
		if !h.IsOnline(follower) {
			continue
		}
		if err := h.SendTo(follower, event); err != nil {
			log.Error().Err(err).Str("email", follower).Msg("Failed to push feed event")
		}
	}

	log.Info().
		Str("author", review.CreatedBy).
		Str("review_id", review.ID).
		Int("followers", len(followers)).
		Msg("Review broadcast")
}
