// Package aggregate holds the pure score and feed derivations computed over
// already-fetched collections. Nothing here touches storage.
package aggregate

import (
	"sort"
	"time"

	"sonorus-backend/internal/models"
)

// AlbumScore carries the mean rating of an album overall and split by critic
// and user reviews. A component is nil when its subset is empty.
type AlbumScore struct {
	Overall *float64 `json:"overall"`
	Critic  *float64 `json:"critic"`
	User    *float64 `json:"user"`
}

// ScoreAlbum computes the album score from the album's reviews. No rounding
// is applied; presentation decides that.
func ScoreAlbum(reviews []models.Review) AlbumScore {
	var critic, user []models.Review
	for _, r := range reviews {
		if r.IsCritic {
			critic = append(critic, r)
		} else {
			user = append(user, r)
		}
	}
	return AlbumScore{
		Overall: mean(reviews),
		Critic:  mean(critic),
		User:    mean(user),
	}
}

func mean(reviews []models.Review) *float64 {
	if len(reviews) == 0 {
		return nil
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := sum / float64(len(reviews))
	return &avg
}

// CriticProfile is the roll-up shown on a reviewer's profile page.
type CriticProfile struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsCritic    bool      `json:"is_critic"`
	ReviewCount int       `json:"review_count"`
	AvgRating   float64   `json:"avg_rating"`
	JoinDate    time.Time `json:"join_date"`
}

// ProfileCritic builds the profile for one reviewer from the reviews they
// authored. ok is false when the review set is empty; a reviewer with no
// reviews has no profile.
func ProfileCritic(email string, reviews []models.Review) (CriticProfile, bool) {
	if len(reviews) == 0 {
		return CriticProfile{}, false
	}
	p := CriticProfile{
		Email:       email,
		Name:        displayName(reviews[0]),
		ReviewCount: len(reviews),
		JoinDate:    reviews[0].CreatedAt,
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
		if r.IsCritic {
			p.IsCritic = true
		}
		if r.CreatedAt.Before(p.JoinDate) {
			p.JoinDate = r.CreatedAt
		}
	}
	p.AvgRating = sum / float64(len(reviews))
	return p, true
}

// CriticSummary is one entry of the critic directory.
type CriticSummary struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	IsCritic    bool    `json:"is_critic"`
	ReviewCount int     `json:"review_count"`
	AvgRating   float64 `json:"avg_rating"`
}

// Directory rolls a review set up into per-author summaries, most prolific
// authors first.
func Directory(reviews []models.Review) []CriticSummary {
	byAuthor := make(map[string]*CriticSummary)
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range reviews {
		s, ok := byAuthor[r.CreatedBy]
		if !ok {
			s = &CriticSummary{
				Email: r.CreatedBy,
				Name:  displayName(r),
			}
			byAuthor[r.CreatedBy] = s
			order = append(order, r.CreatedBy)
		}
		s.ReviewCount++
		totals[r.CreatedBy] += r.Rating
		if r.IsCritic {
			s.IsCritic = true
		}
	}
	out := make([]CriticSummary, 0, len(order))
	for _, email := range order {
		s := byAuthor[email]
		s.AvgRating = totals[email] / float64(s.ReviewCount)
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReviewCount != out[j].ReviewCount {
			return out[i].ReviewCount > out[j].ReviewCount
		}
		return out[i].AvgRating > out[j].AvgRating
	})
	return out
}

// FeedItem is a review joined to its album.
type FeedItem struct {
	Review models.Review `json:"review"`
	Album  models.Album  `json:"album"`
}

// BuildFeed selects reviews authored by followed identities, joins each to
// its album, drops reviews whose album cannot be resolved, and orders the
// result newest first.
func BuildFeed(reviews []models.Review, followed map[string]bool, albumsByID map[string]models.Album) []FeedItem {
	feed := make([]FeedItem, 0)
	for _, r := range reviews {
		if !followed[r.CreatedBy] {
			continue
		}
		album, ok := albumsByID[r.AlbumID]
		if !ok {
			continue
		}
		feed = append(feed, FeedItem{Review: r, Album: album})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Review.CreatedAt.After(feed[j].Review.CreatedAt)
	})
	return feed
}

// FollowState reports whether the actor's follow set contains a target.
type FollowState struct {
	IsFollowing bool   `json:"is_following"`
	FollowID    string `json:"follow_id,omitempty"`
}

// StateFor scans the actor's own follows for the target identity.
func StateFor(follows []models.Follow, targetEmail string) FollowState {
	for _, f := range follows {
		if f.FollowingEmail == targetEmail {
			return FollowState{IsFollowing: true, FollowID: f.ID}
		}
	}
	return FollowState{}
}

// Review sort modes accepted by SortReviews.
const (
	SortRecent  = "recent"
	SortHighest = "highest"
	SortLowest  = "lowest"
	SortHelpful = "helpful"
)

// SortReviews returns a sorted copy of reviews. Unknown modes preserve the
// input order.
func SortReviews(reviews []models.Review, mode string) []models.Review {
	out := make([]models.Review, len(reviews))
	copy(out, reviews)
	switch mode {
	case SortRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortHighest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortLowest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating < out[j].Rating
		})
	case SortHelpful:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].HelpfulCount > out[j].HelpfulCount
		})
	}
	return out
}

func displayName(r models.Review) string {
	if r.ReviewerName != "" {
		return r.ReviewerName
	}
	return "Anonymous"
}
