package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// staticToken satisfies TokenProvider without any HTTP round trip.
type staticToken struct{ value string }

func (s staticToken) Token(ctx context.Context) (string, error) {
	return s.value, nil
}

func newTestClient(ts *httptest.Server) *Client {
	return NewClient(ts.Client(), Config{
		BaseURL:     ts.URL,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	}, staticToken{value: "test-token"})
}

const searchPayload = `{
	"tracks": {
		"items": [
			{
				"id": "t1",
				"name": "First Track",
				"duration_ms": 210000,
				"popularity": 64,
				"explicit": true,
				"preview_url": "https://cdn.example/p1.mp3",
				"artists": [ { "id": "a1", "name": "First Artist" }, { "id": "a2", "name": "Guest" } ],
				"album": { "name": "First Album", "release_date": "1997-04-01" }
			},
			{
				"id": "t2",
				"name": "Second Track",
				"artists": [ { "id": "a3", "name": "Second Artist" } ],
				"album": { "name": "Second Album", "release_date": "2003" }
			}
		]
	}
}`

func TestSearch(t *testing.T) {
	var gotAuth, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchPayload))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	got, err := client.Search(context.Background(), `artist:"x"`, "", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization: got %q", gotAuth)
	}
	if gotQuery != `artist:"x"` {
		t.Errorf("query: got %q", gotQuery)
	}

	if len(got) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(got))
	}
	want := domain.Candidate{
		ID: "t1", Title: "First Track", Artist: "First Artist", Album: "First Album",
		DurationMs: 210000, Popularity: 64, Explicit: true, HasPreview: true,
	}
	if got[0] != want {
		t.Errorf("candidate: got %+v, want %+v", got[0], want)
	}
	if got[1].HasPreview {
		t.Errorf("candidate without preview_url mapped as previewable")
	}
}

func TestSearchExcludesID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchPayload))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	got, err := client.Search(context.Background(), "anything", "t1", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t2" {
		t.Fatalf("candidates: got %+v, want only t2", got)
	}
}

func TestSearchErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request rejected", http.StatusBadRequest, ports.ErrUpstreamRejected},
		{"forbidden rejected", http.StatusForbidden, ports.ErrUpstreamRejected},
		{"server error unavailable", http.StatusInternalServerError, ports.ErrUpstreamUnavailable},
		{"bad gateway unavailable", http.StatusBadGateway, ports.ErrUpstreamUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer ts.Close()

			client := newTestClient(ts)
			_, err := client.Search(context.Background(), "q", "", 10)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error: got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSearchBreakerOpens(t *testing.T) {
	upstreamCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := newTestClient(ts)

	// Five consecutive upstream failures trip the breaker.
	for i := 0; i < 5; i++ {
		if _, err := client.Search(context.Background(), "q", "", 10); !errors.Is(err, ports.ErrUpstreamUnavailable) {
			t.Fatalf("call %d: error got %v, want ErrUpstreamUnavailable", i, err)
		}
	}

	callsBefore := upstreamCalls
	_, err := client.Search(context.Background(), "q", "", 10)
	if !errors.Is(err, ports.ErrUpstreamUnavailable) {
		t.Fatalf("open breaker: error got %v, want ErrUpstreamUnavailable", err)
	}
	if upstreamCalls != callsBefore {
		t.Fatalf("open breaker still hit upstream: %d calls, want %d", upstreamCalls, callsBefore)
	}
}

func TestSearchTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	client := newTestClient(ts)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "q", "", 10)
	if !errors.Is(err, ports.ErrUpstreamTimeout) {
		t.Fatalf("error: got %v, want ErrUpstreamTimeout", err)
	}
}

func TestGetTrack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tracks/t1" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"id": "t1",
			"name": "Seed Track",
			"duration_ms": 200000,
			"popularity": 55,
			"artists": [ { "id": "a1", "name": "Seed Artist" } ],
			"album": { "name": "Seed Album", "release_date": "1994-11-21" }
		}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	got, err := client.GetTrack(context.Background(), "t1")
	if err != nil {
		t.Fatalf("get track: %v", err)
	}

	want := domain.TrackMetadata{
		ID: "t1", Title: "Seed Track", Artist: "Seed Artist", Album: "Seed Album",
		DurationMs: 200000, Popularity: 55, ReleaseYear: 1994,
	}
	if got != want {
		t.Fatalf("track: got %+v, want %+v", got, want)
	}
}

func TestGetTrackNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := newTestClient(ts)
	_, err := client.GetTrack(context.Background(), "missing")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}

	var notFound *ports.TrackNotFoundError
	if !errors.As(err, &notFound) || notFound.ID != "missing" {
		t.Fatalf("error does not carry the track id: %v", err)
	}
}

func TestGetTrackUsesCache(t *testing.T) {
	upstreamCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	cached := domain.TrackMetadata{ID: "t1", Title: "Cached", Artist: "Artist"}
	client := newTestClient(ts)
	client.EnableCache(memoryCache{"t1": cached}, nil)

	got, err := client.GetTrack(context.Background(), "t1")
	if err != nil {
		t.Fatalf("get track: %v", err)
	}
	if got != cached {
		t.Fatalf("track: got %+v, want cached copy", got)
	}
	if upstreamCalls != 0 {
		t.Fatalf("upstream called %d times despite cache hit", upstreamCalls)
	}
}

// memoryCache is a read-only in-memory ports.TrackCache.
type memoryCache map[string]domain.TrackMetadata

func (m memoryCache) Get(ctx context.Context, id string) (domain.TrackMetadata, bool, error) {
	track, ok := m[id]
	return track, ok, nil
}

func (m memoryCache) Put(ctx context.Context, track domain.TrackMetadata) error {
	m[track.ID] = track
	return nil
}

func TestReleaseYearParsing(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"1997-04-01", 1997},
		{"2003", 2003},
		{"", 0},
		{"n/a", 0},
	}

	for _, tc := range tests {
		wt := wireTrack{Album: wireAlbum{ReleaseDate: tc.date}}
		if got := wt.releaseYear(); got != tc.want {
			t.Errorf("releaseYear(%q): got %d, want %d", tc.date, got, tc.want)
		}
	}
}
