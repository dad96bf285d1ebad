package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sonorus-backend/internal/apperr"
)

func newLastFMTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*LastFMClient, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("api_key") == "" || r.URL.Query().Get("format") != "json" {
			t.Errorf("missing api_key or format params: %s", r.URL.RawQuery)
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewLastFMClient("test-key", srv.URL), &calls
}

func TestSearchEmptyQuerySkipsRequest(t *testing.T) {
	client, calls := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	matches, err := client.Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %d, want 0", len(matches))
	}
	if *calls != 0 {
		t.Errorf("server called %d times for empty query", *calls)
	}
}

func TestSearchParsesMatches(t *testing.T) {
	client, _ := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "album.search" || q.Get("album") != "ok computer" || q.Get("limit") != "5" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"results": {"albummatches": {"album": [
				{"name": "OK Computer", "artist": "Radiohead", "mbid": "abc-123",
				 "image": [
					{"#text": "small.jpg", "size": "small"},
					{"#text": "xl.jpg", "size": "extralarge"}
				 ]},
				{"name": "OKNOTOK", "artist": "Radiohead", "image": []}
			]}}
		}`))
	})

	matches, err := client.Search(context.Background(), "ok computer")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	first := matches[0]
	if first.Name != "OK Computer" || first.Artist != "Radiohead" || first.MBID != "abc-123" {
		t.Errorf("unexpected first match: %+v", first)
	}
	if first.ThumbnailURL != "xl.jpg" {
		t.Errorf("thumbnail = %q, want largest available image", first.ThumbnailURL)
	}
	if matches[1].ThumbnailURL != "" {
		t.Errorf("thumbnail for imageless match = %q, want empty", matches[1].ThumbnailURL)
	}
}

func TestDetailsNormalizesAlbum(t *testing.T) {
	client, _ := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "album.getinfo" || q.Get("autocorrect") != "1" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("artist") != "Radiohead" || q.Get("album") != "OK Computer" {
			t.Errorf("unexpected album params: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"album": {
				"name": "OK Computer",
				"artist": "Radiohead",
				"url": "https://www.last.fm/music/Radiohead/OK+Computer",
				"image": [
					{"#text": "large.jpg", "size": "large"},
					{"#text": "mega.jpg", "size": "mega"}
				],
				"tracks": {"track": [{"name": "Airbag"}, {"name": "Paranoid Android"}]},
				"tags": {"tag": [{"name": "alternative rock"}, {"name": "90s"}]},
				"wiki": {"summary": "A landmark <a href=\"https://last.fm\">album</a> of the era. <a href=\"https://www.last.fm/music/Radiohead\">Read more on Last.fm</a>."}
			}
		}`))
	})

	details, err := client.Details(context.Background(), "Radiohead", "OK Computer", "")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if details.Title != "OK Computer" || details.Artist != "Radiohead" {
		t.Errorf("unexpected identity: %+v", details)
	}
	if details.CoverURL != "mega.jpg" {
		t.Errorf("cover = %q, want mega size preferred", details.CoverURL)
	}
	if len(details.Tracklist) != 2 || details.Tracklist[1] != "Paranoid Android" {
		t.Errorf("tracklist = %v", details.Tracklist)
	}
	if details.Genre != "Alternative rock" {
		t.Errorf("genre = %q, want first tag capitalized", details.Genre)
	}
	if details.Description != "A landmark album of the era." {
		t.Errorf("description = %q", details.Description)
	}
	if details.SpotifyURL != "https://www.last.fm/music/Radiohead/OK+Computer" {
		t.Errorf("url = %q", details.SpotifyURL)
	}
	if details.ReleaseYear != time.Now().Year() {
		t.Errorf("release year = %d, want current year", details.ReleaseYear)
	}
}

func TestDetailsHandlesSingleObjectLists(t *testing.T) {
	client, _ := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"album": {
				"name": "Single",
				"artist": "Solo",
				"tracks": {"track": {"name": "Only Song"}},
				"tags": {"tag": {"name": "pop"}}
			}
		}`))
	})

	details, err := client.Details(context.Background(), "Solo", "Single", "")
	if err != nil {
		t.Fatalf("details failed: %v", err)
	}
	if len(details.Tracklist) != 1 || details.Tracklist[0] != "Only Song" {
		t.Errorf("tracklist = %v, want single track", details.Tracklist)
	}
	if details.Genre != "Pop" {
		t.Errorf("genre = %q, want Pop", details.Genre)
	}
}

func TestDetailsMBIDTakesPrecedence(t *testing.T) {
	client, _ := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("mbid") != "abc-123" {
			t.Errorf("mbid param = %q, want abc-123", q.Get("mbid"))
		}
		if q.Get("artist") != "" || q.Get("album") != "" {
			t.Errorf("artist/album sent alongside mbid: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"album": {"name": "X", "artist": "Y"}}`))
	})

	if _, err := client.Details(context.Background(), "ignored", "ignored", "abc-123"); err != nil {
		t.Fatalf("details failed: %v", err)
	}
}

func TestDetailsUnknownAlbum(t *testing.T) {
	client, _ := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": 6, "message": "Album not found"}`))
	})

	_, err := client.Details(context.Background(), "Nobody", "Nothing", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDetailsMalformedResponse(t *testing.T) {
	client, _ := newLastFMTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Details(context.Background(), "A", "B", "")
	if !errors.Is(err, apperr.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}
