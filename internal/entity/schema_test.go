package entity

import (
	"errors"
	"testing"
)

func TestGetSchemaUnknownEntity(t *testing.T) {
	if _, err := GetSchema("Playlist"); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestReviewDefaultsApplied(t *testing.T) {
	s := mustSchema(t, EntityReview)
	data := s.Normalize(map[string]any{
		"album_id": "a1",
		"rating":   float64(85),
		"content":  "great",
	})

	if data["is_critic"] != false {
		t.Errorf("is_critic default = %v, want false", data["is_critic"])
	}
	if data["helpful_count"] != float64(0) {
		t.Errorf("helpful_count default = %v, want 0", data["helpful_count"])
	}
}

func TestGenreBucketing(t *testing.T) {
	s := mustSchema(t, EntityAlbum)

	cases := []struct {
		name  string
		genre any
		want  string
	}{
		{"recognized", "Jazz", "Jazz"},
		{"unrecognized", "Shoegaze", "Other"},
		{"empty", "", "Other"},
		{"absent", nil, "Other"},
	}
	for _, tc := range cases {
		payload := map[string]any{"title": "X", "artist": "Y"}
		if tc.genre != nil {
			payload["genre"] = tc.genre
		}
		data := s.Normalize(payload)
		if data["genre"] != tc.want {
			t.Errorf("%s: genre = %v, want %q", tc.name, data["genre"], tc.want)
		}
	}
}

func TestAlbumValidation(t *testing.T) {
	s := mustSchema(t, EntityAlbum)

	cases := []struct {
		name    string
		payload map[string]any
		wantErr bool
	}{
		{"valid minimal", map[string]any{"title": "X", "artist": "Y"}, false},
		{"missing artist", map[string]any{"title": "X"}, true},
		{"empty title", map[string]any{"title": "", "artist": "Y"}, true},
		{"unknown field", map[string]any{"title": "X", "artist": "Y", "label": "Z"}, true},
		{"wrong type", map[string]any{"title": 42, "artist": "Y"}, true},
		{"tracklist ok", map[string]any{"title": "X", "artist": "Y", "tracklist": []any{"One", "Two"}}, false},
		{"tracklist wrong element", map[string]any{"title": "X", "artist": "Y", "tracklist": []any{"One", 2}}, true},
		{"release year number", map[string]any{"title": "X", "artist": "Y", "release_year": float64(1994)}, false},
	}
	for _, tc := range cases {
		err := s.Validate(s.Normalize(tc.payload))
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestReviewRatingBounds(t *testing.T) {
	s := mustSchema(t, EntityReview)

	cases := []struct {
		rating  float64
		wantErr bool
	}{
		{0, false},
		{100, false},
		{50, false},
		{-1, true},
		{101, true},
	}
	for _, tc := range cases {
		payload := s.Normalize(map[string]any{
			"album_id": "a1",
			"rating":   tc.rating,
			"content":  "fine",
		})
		err := s.Validate(payload)
		if (err != nil) != tc.wantErr {
			t.Errorf("rating %v: err = %v, wantErr %v", tc.rating, err, tc.wantErr)
		}
	}
}

func TestReviewContentRequiredNonEmpty(t *testing.T) {
	s := mustSchema(t, EntityReview)
	payload := s.Normalize(map[string]any{
		"album_id": "a1",
		"rating":   float64(50),
		"content":  "",
	})
	if err := s.Validate(payload); err == nil {
		t.Error("empty content accepted")
	}
}

func TestRecordFieldResolution(t *testing.T) {
	rec := &Record{
		ID:        "r1",
		CreatedBy: "me@example.com",
		Data:      map[string]any{"follower_email": "me@example.com"},
	}

	if v, ok := rec.Field("created_by"); !ok || v != "me@example.com" {
		t.Errorf("created_by = %v, %v", v, ok)
	}
	if v, ok := rec.Field("data.follower_email"); !ok || v != "me@example.com" {
		t.Errorf("data.follower_email = %v, %v", v, ok)
	}
	if v, ok := rec.Field("follower_email"); !ok || v != "me@example.com" {
		t.Errorf("follower_email = %v, %v", v, ok)
	}
	if _, ok := rec.Field("data.missing"); ok {
		t.Error("missing field resolved")
	}
}
