package models

import (
	"time"

	"sonorus-backend/internal/entity"
)

// User represents an account in the system
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"display_name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Album represents a reviewed album
type Album struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	CoverURL    string    `json:"cover_url,omitempty"`
	ReleaseYear int       `json:"release_year,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Tracklist   []string  `json:"tracklist,omitempty"`
	Description string    `json:"description,omitempty"`
	SpotifyURL  string    `json:"spotify_url,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review represents a rating and write-up for one album
type Review struct {
	ID           string    `json:"id"`
	AlbumID      string    `json:"album_id"`
	Rating       float64   `json:"rating"`
	Title        string    `json:"title,omitempty"`
	Content      string    `json:"content"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	IsCritic     bool      `json:"is_critic"`
	HelpfulCount int       `json:"helpful_count"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Follow represents one user following another's reviews
type Follow struct {
	ID             string    `json:"id"`
	FollowerEmail  string    `json:"follower_email"`
	FollowingEmail string    `json:"following_email"`
	FollowingName  string    `json:"following_name,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// AlbumFromRecord decodes an Album entity record into its typed view
func AlbumFromRecord(rec *entity.Record) Album {
	return Album{
		ID:          rec.ID,
		Title:       getString(rec, "title"),
		Artist:      getString(rec, "artist"),
		CoverURL:    getString(rec, "cover_url"),
		ReleaseYear: int(getNumber(rec, "release_year")),
		Genre:       getString(rec, "genre"),
		Tracklist:   getStringList(rec, "tracklist"),
		Description: getString(rec, "description"),
		SpotifyURL:  getString(rec, "spotify_url"),
		CreatedBy:   rec.CreatedBy,
		CreatedAt:   rec.CreatedAt,
	}
}

// ReviewFromRecord decodes a Review entity record into its typed view
func ReviewFromRecord(rec *entity.Record) Review {
	return Review{
		ID:           rec.ID,
		AlbumID:      getString(rec, "album_id"),
		Rating:       getNumber(rec, "rating"),
		Title:        getString(rec, "title"),
		Content:      getString(rec, "content"),
		ReviewerName: getString(rec, "reviewer_name"),
		IsCritic:     getBool(rec, "is_critic"),
		HelpfulCount: int(getNumber(rec, "helpful_count")),
		CreatedBy:    rec.CreatedBy,
		CreatedAt:    rec.CreatedAt,
	}
}

// FollowFromRecord decodes a Follow entity record into its typed view
func FollowFromRecord(rec *entity.Record) Follow {
	return Follow{
		ID:             rec.ID,
		FollowerEmail:  getString(rec, "follower_email"),
		FollowingEmail: getString(rec, "following_email"),
		FollowingName:  getString(rec, "following_name"),
		CreatedBy:      rec.CreatedBy,
		CreatedAt:      rec.CreatedAt,
	}
}

// ReviewsFromRecords decodes a list of Review records
func ReviewsFromRecords(recs []*entity.Record) []Review {
	reviews := make([]Review, 0, len(recs))
	for _, rec := range recs {
		reviews = append(reviews, ReviewFromRecord(rec))
	}
	return reviews
}

// FollowsFromRecords decodes a list of Follow records
func FollowsFromRecords(recs []*entity.Record) []Follow {
	follows := make([]Follow, 0, len(recs))
	for _, rec := range recs {
		follows = append(follows, FollowFromRecord(rec))
	}
	return follows
}

func getString(rec *entity.Record, field string) string {
	if v, ok := rec.Data[field].(string); ok {
		return v
	}
	return ""
}

func getNumber(rec *entity.Record, field string) float64 {
	switch v := rec.Data[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func getBool(rec *entity.Record, field string) bool {
	if v, ok := rec.Data[field].(bool); ok {
		return v
	}
	return false
}

func getStringList(rec *entity.Record, field string) []string {
	switch v := rec.Data[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
