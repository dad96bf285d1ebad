package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sonorus-backend/internal/apperr"
	"sonorus-backend/internal/entity"
)

// memStore is an in-memory RecordStore used to exercise the façade without a
// database.
type memStore struct {
	records map[string]*entity.Record
	order   []string
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*entity.Record)}
}

func (m *memStore) Insert(_ context.Context, rec *entity.Record) error {
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*entity.Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFoundf("record %s not found", id)
	}
	return rec, nil
}

func (m *memStore) List(_ context.Context, filter entity.Filter, opts entity.ListOptions) ([]*entity.Record, error) {
	var out []*entity.Record
	for _, id := range m.order {
		rec := m.records[id]
		if matches(rec, filter) {
			out = append(out, rec)
		}
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) UpdateData(_ context.Context, id string, data map[string]any) error {
	rec, ok := m.records[id]
	if !ok {
		return apperr.NotFoundf("record %s not found", id)
	}
	rec.Data = data
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return apperr.NotFoundf("record %s not found", id)
	}
	delete(m.records, id)
	return nil
}

func matches(rec *entity.Record, filter entity.Filter) bool {
	for field, want := range filter {
		got, ok := rec.Field(field)
		if !ok {
			return false
		}
		switch set := want.(type) {
		case []any:
			found := false
			for _, item := range set {
				if fmt.Sprint(got) == fmt.Sprint(item) {
					found = true
				}
			}
			if !found {
				return false
			}
		default:
			if fmt.Sprint(got) != fmt.Sprint(want) {
				return false
			}
		}
	}
	return true
}

func newTestStore() (*Store, map[string]*memStore) {
	repos := map[string]*memStore{
		entity.EntityAlbum:  newMemStore(),
		entity.EntityReview: newMemStore(),
		entity.EntityFollow: newMemStore(),
	}
	stores := make(map[string]RecordStore, len(repos))
	for name, repo := range repos {
		stores[name] = repo
	}
	return NewStore(stores), repos
}

var testUser = &entity.Actor{Email: "user@example.com", Role: "user"}

func TestCreateAlbumRoundTrip(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	payload := map[string]any{
		"title":  "Blue Train",
		"artist": "John Coltrane",
		"genre":  "Jazz",
	}
	created, err := store.Create(ctx, entity.EntityAlbum, testUser, payload)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Errorf("missing generated id or timestamp: %+v", created)
	}
	if created.CreatedBy != testUser.Email {
		t.Errorf("created_by = %q, want %q", created.CreatedBy, testUser.Email)
	}

	fetched, err := store.Get(ctx, entity.EntityAlbum, nil, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for field, want := range payload {
		if fetched.Data[field] != want {
			t.Errorf("field %q = %v, want %v", field, fetched.Data[field], want)
		}
	}
}

func TestCreateAlbumBucketsUnknownGenre(t *testing.T) {
	store, _ := newTestStore()

	created, err := store.Create(context.Background(), entity.EntityAlbum, testUser, map[string]any{
		"title":  "Loveless",
		"artist": "My Bloody Valentine",
		"genre":  "Shoegaze",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Data["genre"] != "Other" {
		t.Errorf("genre = %v, want Other", created.Data["genre"])
	}
}

func TestCreateAlbumValidation(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Create(context.Background(), entity.EntityAlbum, testUser, map[string]any{
		"title": "No Artist",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateReviewUnauthenticated(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Create(context.Background(), entity.EntityReview, nil, map[string]any{
		"album_id": "a1",
		"rating":   float64(75),
		"content":  "nice",
	})
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestCreateReviewAppliesDefaults(t *testing.T) {
	store, _ := newTestStore()

	created, err := store.Create(context.Background(), entity.EntityReview, testUser, map[string]any{
		"album_id": "a1",
		"rating":   float64(75),
		"content":  "nice",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Data["is_critic"] != false || created.Data["helpful_count"] != float64(0) {
		t.Errorf("defaults not applied: %+v", created.Data)
	}
}

func TestCreateSelfFollowDenied(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Create(context.Background(), entity.EntityFollow, testUser, map[string]any{
		"follower_email":  testUser.Email,
		"following_email": testUser.Email,
	})
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestCreateDuplicateFollowRejected(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	payload := map[string]any{
		"follower_email":  testUser.Email,
		"following_email": "critic@example.com",
	}
	if _, err := store.Create(ctx, entity.EntityFollow, testUser, payload); err != nil {
		t.Fatalf("first follow failed: %v", err)
	}
	_, err := store.Create(ctx, entity.EntityFollow, testUser, payload)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error on duplicate, got %v", err)
	}
}

func TestListFollowsHidesForeignRows(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	other := &entity.Actor{Email: "other@example.com", Role: "user"}
	for _, actor := range []*entity.Actor{testUser, other} {
		_, err := store.Create(ctx, entity.EntityFollow, actor, map[string]any{
			"follower_email":  actor.Email,
			"following_email": "critic@example.com",
		})
		if err != nil {
			t.Fatalf("seed follow failed: %v", err)
		}
	}

	recs, err := store.List(ctx, entity.EntityFollow, testUser, entity.Filter{}, entity.ListOptions{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(recs) != 1 || recs[0].CreatedBy != testUser.Email {
		t.Errorf("visible rows = %d, want only own follow", len(recs))
	}

	admin := &entity.Actor{Email: "root@example.com", Role: "admin"}
	recs, err = store.List(ctx, entity.EntityFollow, admin, entity.Filter{}, entity.ListOptions{})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("admin visible rows = %d, want 2", len(recs))
	}
}

func TestGetForeignFollowMaskedAsNotFound(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, entity.EntityFollow, testUser, map[string]any{
		"follower_email":  testUser.Email,
		"following_email": "critic@example.com",
	})
	if err != nil {
		t.Fatalf("seed follow failed: %v", err)
	}

	other := &entity.Actor{Email: "other@example.com", Role: "user"}
	if _, err := store.Get(ctx, entity.EntityFollow, other, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for foreign follow, got %v", err)
	}
}

func TestUpdateByStrangerDenied(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, entity.EntityAlbum, testUser, map[string]any{
		"title": "X", "artist": "Y",
	})
	if err != nil {
		t.Fatalf("seed album failed: %v", err)
	}

	stranger := &entity.Actor{Email: "stranger@example.com", Role: "user"}
	_, err = store.Update(ctx, entity.EntityAlbum, stranger, created.ID, map[string]any{"title": "Z"})
	if !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}

	admin := &entity.Actor{Email: "root@example.com", Role: "admin"}
	updated, err := store.Update(ctx, entity.EntityAlbum, admin, created.ID, map[string]any{"title": "Z"})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Data["title"] != "Z" || updated.Data["artist"] != "Y" {
		t.Errorf("merge result = %+v", updated.Data)
	}
}

func TestUpdateRevalidatesMergedPayload(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, entity.EntityReview, testUser, map[string]any{
		"album_id": "a1", "rating": float64(50), "content": "ok",
	})
	if err != nil {
		t.Fatalf("seed review failed: %v", err)
	}

	_, err = store.Update(ctx, entity.EntityReview, testUser, created.ID, map[string]any{
		"rating": float64(150),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteByCreator(t *testing.T) {
	store, repos := newTestStore()
	ctx := context.Background()

	created, err := store.Create(ctx, entity.EntityAlbum, testUser, map[string]any{
		"title": "X", "artist": "Y",
	})
	if err != nil {
		t.Fatalf("seed album failed: %v", err)
	}

	if err := store.Delete(ctx, entity.EntityAlbum, testUser, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := repos[entity.EntityAlbum].records[created.ID]; ok {
		t.Error("record still present after delete")
	}

	if err := store.Delete(ctx, entity.EntityAlbum, testUser, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestUnknownEntityAndFilterField(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "Playlist", testUser, map[string]any{}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown entity: got %v", err)
	}
	_, err := store.List(ctx, entity.EntityAlbum, nil, entity.Filter{"label": "x"}, entity.ListOptions{})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown filter field: got %v", err)
	}
}
