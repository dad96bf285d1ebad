package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/models"
	"sonorus-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// memReviews is an in-memory RecordStore backing the review handler tests.
type memReviews struct {
	records []*entity.Record
}

func (m *memReviews) Insert(_ context.Context, rec *entity.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memReviews) GetByID(_ context.Context, id string) (*entity.Record, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, apperr.NotFoundf("record %s not found", id)
}

func (m *memReviews) List(_ context.Context, filter entity.Filter, opts entity.ListOptions) ([]*entity.Record, error) {
	var out []*entity.Record
	for _, rec := range m.records {
		keep := true
		for field, want := range filter {
			if got, ok := rec.Field(field); !ok || got != want {
				keep = false
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	if opts.OrderBy == "created_at" {
		sort.SliceStable(out, func(i, j int) bool {
			if opts.Descending {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memReviews) UpdateData(_ context.Context, id string, data map[string]any) error {
	rec, err := m.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	rec.Data = data
	return nil
}

func (m *memReviews) Delete(_ context.Context, id string) error {
	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("record %s not found", id)
}

func seedReview(repo *memReviews, id, author string, offset int) {
	repo.Insert(context.Background(), &entity.Record{
		ID:        id,
		CreatedBy: author,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Hour),
		Data: map[string]any{
			"album_id": "a1",
			"rating":   float64(70),
			"content":  "fine",
		},
	})
}

func newReviewTestRouter(repo *memReviews) *chi.Mux {
	store := services.NewStore(map[string]services.RecordStore{
		entity.EntityReview: repo,
	})
	handler := NewReviewHandler(store, nil)

	r := chi.NewRouter()
	r.Get("/reviews", handler.ListReviews)
	return r
}

func listReviews(t *testing.T, router *chi.Mux, target string) []models.Review {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	if rec.Code != 200 {
		t.Fatalf("GET %s = %d, want 200: %s", target, rec.Code, rec.Body.String())
	}
	var body struct {
		Reviews []models.Review `json:"reviews"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body.Reviews
}

func TestListReviewsAcrossAllAlbums(t *testing.T) {
	repo := &memReviews{}
	seedReview(repo, "r1", "one@example.com", 0)
	seedReview(repo, "r2", "two@example.com", 1)
	seedReview(repo, "r3", "one@example.com", 2)
	router := newReviewTestRouter(repo)

	reviews := listReviews(t, router, "/reviews")
	want := []string{"r3", "r2", "r1"}
	if len(reviews) != len(want) {
		t.Fatalf("reviews = %d, want %d", len(reviews), len(want))
	}
	for i, id := range want {
		if reviews[i].ID != id {
			t.Errorf("reviews[%d] = %s, want %s", i, reviews[i].ID, id)
		}
	}
}

func TestListReviewsLimit(t *testing.T) {
	repo := &memReviews{}
	seedReview(repo, "r1", "one@example.com", 0)
	seedReview(repo, "r2", "one@example.com", 1)
	seedReview(repo, "r3", "one@example.com", 2)
	router := newReviewTestRouter(repo)

	reviews := listReviews(t, router, "/reviews?limit=2")
	if len(reviews) != 2 || reviews[0].ID != "r3" || reviews[1].ID != "r2" {
		t.Errorf("limited reviews = %+v, want two newest", reviews)
	}
}

func TestListReviewsByAuthor(t *testing.T) {
	repo := &memReviews{}
	seedReview(repo, "r1", "one@example.com", 0)
	seedReview(repo, "r2", "two@example.com", 1)
	seedReview(repo, "r3", "one@example.com", 2)
	router := newReviewTestRouter(repo)

	reviews := listReviews(t, router, "/reviews?author=one@example.com")
	if len(reviews) != 2 {
		t.Fatalf("author reviews = %d, want 2", len(reviews))
	}
	for _, r := range reviews {
		if r.CreatedBy != "one@example.com" {
			t.Errorf("review %s authored by %s", r.ID, r.CreatedBy)
		}
	}
}
