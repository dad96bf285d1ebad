package services

import (
	"context"

	"sonorus-backend/internal/aggregate"
	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/models"
)

const feedReviewLimit = 100

// CommunityService computes the read-side roll-ups: album scores, critic
// profiles, the critic directory and the follow feed. Review and album rows
// are public, so it reads them through the repositories directly; follow rows
// feed only counts and membership sets, never leave as records.
type CommunityService struct {
	store   *Store
	reviews RecordStore
	albums  RecordStore
	follows RecordStore
}

// NewCommunityService creates a community service
func NewCommunityService(store *Store, reviews, albums, follows RecordStore) *CommunityService {
	return &CommunityService{
		store:   store,
		reviews: reviews,
		albums:  albums,
		follows: follows,
	}
}

// AlbumScores computes the aggregate score for one album
func (s *CommunityService) AlbumScores(ctx context.Context, albumID string) (aggregate.AlbumScore, int, error) {
	recs, err := s.reviews.List(ctx, entity.Filter{"album_id": albumID}, entity.ListOptions{})
	if err != nil {
		return aggregate.AlbumScore{}, 0, err
	}
	reviews := models.ReviewsFromRecords(recs)
	return aggregate.ScoreAlbum(reviews), len(reviews), nil
}

// CriticProfileView is the full critic page payload.
type CriticProfileView struct {
	Profile       aggregate.CriticProfile `json:"profile"`
	FollowerCount int                     `json:"follower_count"`
	Reviews       []aggregate.FeedItem    `json:"reviews"`
}

// CriticProfile builds the profile roll-up for one reviewer. A reviewer with
// no reviews is reported as not found.
func (s *CommunityService) CriticProfile(ctx context.Context, email string) (*CriticProfileView, error) {
	recs, err := s.reviews.List(ctx, entity.Filter{"created_by": email}, entity.ListOptions{})
	if err != nil {
		return nil, err
	}
	reviews := models.ReviewsFromRecords(recs)

	profile, ok := aggregate.ProfileCritic(email, reviews)
	if !ok {
		return nil, apperr.NotFoundf("critic %s not found", email)
	}

	followerCount, err := s.countFollowers(ctx, email)
	if err != nil {
		return nil, err
	}

	albums, err := s.albumsByID(ctx)
	if err != nil {
		return nil, err
	}
	joined := aggregate.BuildFeed(reviews, map[string]bool{email: true}, albums)

	return &CriticProfileView{
		Profile:       profile,
		FollowerCount: followerCount,
		Reviews:       joined,
	}, nil
}

// Directory rolls all reviews up into the critic directory
func (s *CommunityService) Directory(ctx context.Context) ([]aggregate.CriticSummary, error) {
	recs, err := s.reviews.List(ctx, entity.Filter{}, entity.ListOptions{})
	if err != nil {
		return nil, err
	}
	return aggregate.Directory(models.ReviewsFromRecords(recs)), nil
}

// Feed builds the actor's feed: recent reviews by followed identities joined
// to their albums, newest first. Follows are read through the store so the
// actor only ever sees their own follow set.
func (s *CommunityService) Feed(ctx context.Context, actor *entity.Actor) ([]aggregate.FeedItem, error) {
	if actor == nil {
		return nil, apperr.Authorizationf("feed requires a signed-in user")
	}

	followRecs, err := s.store.List(ctx, entity.EntityFollow, actor,
		entity.Filter{"follower_email": actor.Email}, entity.ListOptions{})
	if err != nil {
		return nil, err
	}
	followed := make(map[string]bool, len(followRecs))
	for _, f := range models.FollowsFromRecords(followRecs) {
		followed[f.FollowingEmail] = true
	}

	reviewRecs, err := s.reviews.List(ctx, entity.Filter{}, entity.ListOptions{
		OrderBy:    "created_at",
		Descending: true,
		Limit:      feedReviewLimit,
	})
	if err != nil {
		return nil, err
	}

	albums, err := s.albumsByID(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.BuildFeed(models.ReviewsFromRecords(reviewRecs), followed, albums), nil
}

// FollowState reports whether the actor follows a target identity
func (s *CommunityService) FollowState(ctx context.Context, actor *entity.Actor, targetEmail string) (aggregate.FollowState, error) {
	if actor == nil {
		return aggregate.FollowState{}, nil
	}
	recs, err := s.store.List(ctx, entity.EntityFollow, actor,
		entity.Filter{"follower_email": actor.Email}, entity.ListOptions{})
	if err != nil {
		return aggregate.FollowState{}, err
	}
	return aggregate.StateFor(models.FollowsFromRecords(recs), targetEmail), nil
}

// FollowersOf returns the emails currently following an identity. Used for
// counts and feed push, never exposed as follow records.
func (s *CommunityService) FollowersOf(ctx context.Context, email string) ([]string, error) {
	recs, err := s.follows.List(ctx, entity.Filter{"following_email": email}, entity.ListOptions{})
	if err != nil {
		return nil, err
	}
	followers := make([]string, 0, len(recs))
	for _, f := range models.FollowsFromRecords(recs) {
		followers = append(followers, f.FollowerEmail)
	}
	return followers, nil
}

func (s *CommunityService) countFollowers(ctx context.Context, email string) (int, error) {
	followers, err := s.FollowersOf(ctx, email)
	if err != nil {
		return 0, err
	}
	return len(followers), nil
}

func (s *CommunityService) albumsByID(ctx context.Context) (map[string]models.Album, error) {
	recs, err := s.albums.List(ctx, entity.Filter{}, entity.ListOptions{})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Album, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = models.AlbumFromRecord(rec)
	}
	return byID, nil
}
