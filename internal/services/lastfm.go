package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"sonorus-backend/internal/apperr"
)

const searchLimit = 5

// LastFMClient fetches album metadata from the Last.fm API for the album
// creation autofill flow.
type LastFMClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewLastFMClient creates a Last.fm client
func NewLastFMClient(apiKey, baseURL string) *LastFMClient {
	return &LastFMClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// AlbumMatch is one album search result
type AlbumMatch struct {
	Name         string `json:"name"`
	Artist       string `json:"artist"`
	ThumbnailURL string `json:"thumbnail_url"`
	MBID         string `json:"mbid,omitempty"`
}

// AlbumDetails is the normalized album shape produced from a Last.fm
// album.getinfo response.
type AlbumDetails struct {
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	CoverURL    string   `json:"cover_url"`
	ReleaseYear int      `json:"release_year"`
	Genre       string   `json:"genre"`
	Tracklist   []string `json:"tracklist"`
	Description string   `json:"description"`
	SpotifyURL  string   `json:"spotify_url"`
}

type lfmImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type lfmSearchResponse struct {
	Results struct {
		AlbumMatches struct {
			Album []struct {
				Name   string     `json:"name"`
				Artist string     `json:"artist"`
				MBID   string     `json:"mbid"`
				Image  []lfmImage `json:"image"`
			} `json:"album"`
		} `json:"albummatches"`
	} `json:"results"`
}

type lfmInfoResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Album   *struct {
		Name   string     `json:"name"`
		Artist string     `json:"artist"`
		URL    string     `json:"url"`
		Image  []lfmImage `json:"image"`
		Tracks *struct {
			Track json.RawMessage `json:"track"`
		} `json:"tracks"`
		Tags *struct {
			Tag json.RawMessage `json:"tag"`
		} `json:"tags"`
		Wiki *struct {
			Summary string `json:"summary"`
		} `json:"wiki"`
	} `json:"album"`
}

// Search looks up albums by name, returning at most five matches. An empty
// query returns no matches without a round trip.
func (c *LastFMClient) Search(ctx context.Context, query string) ([]AlbumMatch, error) {
	if strings.TrimSpace(query) == "" {
		return []AlbumMatch{}, nil
	}

	params := url.Values{}
	params.Set("method", "album.search")
	params.Set("album", query)
	params.Set("limit", fmt.Sprint(searchLimit))

	var parsed lfmSearchResponse
	if err := c.get(ctx, params, &parsed); err != nil {
		return nil, err
	}

	matches := make([]AlbumMatch, 0, len(parsed.Results.AlbumMatches.Album))
	for _, a := range parsed.Results.AlbumMatches.Album {
		matches = append(matches, AlbumMatch{
			Name:         a.Name,
			Artist:       a.Artist,
			ThumbnailURL: pickCover(a.Image),
			MBID:         a.MBID,
		})
	}
	return matches, nil
}

// Details fetches one album and normalizes it into the app's album shape.
// When mbid is set it takes precedence over the artist/name pair.
func (c *LastFMClient) Details(ctx context.Context, artist, name, mbid string) (*AlbumDetails, error) {
	params := url.Values{}
	params.Set("method", "album.getinfo")
	params.Set("autocorrect", "1")
	if mbid != "" {
		params.Set("mbid", mbid)
	} else {
		params.Set("artist", artist)
		params.Set("album", name)
	}

	var parsed lfmInfoResponse
	if err := c.get(ctx, params, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != 0 || parsed.Album == nil {
		return nil, apperr.NotFoundf("album details not found: %s", parsed.Message)
	}

	album := parsed.Album
	details := &AlbumDetails{
		Title:       album.Name,
		Artist:      album.Artist,
		CoverURL:    pickCover(album.Image),
		ReleaseYear: time.Now().Year(),
		SpotifyURL:  album.URL,
	}
	if album.Tracks != nil {
		var tracks []struct {
			Name string `json:"name"`
		}
		for _, t := range arrayOrSingle(album.Tracks.Track) {
			var track struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(t, &track) == nil {
				tracks = append(tracks, track)
			}
		}
		for _, t := range tracks {
			details.Tracklist = append(details.Tracklist, t.Name)
		}
	}
	if album.Tags != nil {
		tags := arrayOrSingle(album.Tags.Tag)
		if len(tags) > 0 {
			var tag struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(tags[0], &tag) == nil {
				details.Genre = capitalize(tag.Name)
			}
		}
	}
	if album.Wiki != nil {
		details.Description = cleanSummary(album.Wiki.Summary)
	}
	return details, nil
}

func (c *LastFMClient) get(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Store(fmt.Errorf("lastfm request failed: %w", err))
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Store(fmt.Errorf("failed to decode lastfm response: %w", err))
	}
	return nil
}

// pickCover prefers the largest image sizes Last.fm offers.
func pickCover(images []lfmImage) string {
	for _, size := range []string{"mega", "extralarge", "large"} {
		for _, img := range images {
			if img.Size == size && img.URL != "" {
				return img.URL
			}
		}
	}
	return ""
}

// Last.fm returns a single object instead of an array when a list has one
// element.
func arrayOrSingle(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var many []json.RawMessage
	if json.Unmarshal(raw, &many) == nil {
		return many
	}
	return []json.RawMessage{raw}
}

var (
	anchorRe   = regexp.MustCompile(`(?i)<a\b[^>]*>(.*?)</a>`)
	readMoreRe = regexp.MustCompile(`(?s)\s*Read more on Last\.fm.*`)
)

func cleanSummary(summary string) string {
	summary = anchorRe.ReplaceAllString(summary, "$1")
	summary = readMoreRe.ReplaceAllString(summary, "")
	return strings.TrimSpace(summary)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
