package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gojson "github.com/goccy/go-json"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/core/services"
)

// stubCatalog backs a real Resolver so handler tests exercise the full
// pipeline without a network.
type stubCatalog struct {
	tracks  map[string]domain.TrackMetadata
	results []domain.Candidate
	err     error
}

func (c *stubCatalog) GetTrack(ctx context.Context, id string) (domain.TrackMetadata, error) {
	if c.err != nil {
		return domain.TrackMetadata{}, c.err
	}
	track, ok := c.tracks[id]
	if !ok {
		return domain.TrackMetadata{}, &ports.TrackNotFoundError{ID: id}
	}
	return track, nil
}

func (c *stubCatalog) Search(ctx context.Context, query string, excludeID string, limit int) ([]domain.Candidate, error) {
	return c.results, nil
}

func newTestHandler(catalog ports.CatalogClient) *Handler {
	resolver := services.NewResolver(catalog, services.ResolverConfig{
		NewRand: func(trackID string) ports.RandomSource { return services.NewRandomSource(1) },
	})
	return NewHandler(resolver, 0)
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(&stubCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := gojson.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestSimilarTracks(t *testing.T) {
	catalog := &stubCatalog{
		tracks: map[string]domain.TrackMetadata{
			"seed1": {
				ID:         "seed1",
				Title:      "Golden Hour",
				Artist:     "Test Artist",
				DurationMs: 210000,
				Popularity: 60,
			},
		},
		results: []domain.Candidate{
			{ID: "c1", Title: "Match One", Artist: "Other", DurationMs: 210000, Popularity: 60, HasPreview: true},
			{ID: "c2", Title: "Match Two", Artist: "Another", DurationMs: 200000, Popularity: 40},
		},
	}
	handler := newTestHandler(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tracks/seed1/similar", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}

	var body similarResponse
	if err := gojson.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.SeedID != "seed1" {
		t.Errorf("seed_id: got %q, want %q", body.SeedID, "seed1")
	}
	if body.Count != 2 {
		t.Fatalf("count: got %d, want 2", body.Count)
	}
	for i := 1; i < len(body.Tracks); i++ {
		if body.Tracks[i].Score > body.Tracks[i-1].Score {
			t.Errorf("tracks not sorted by score at index %d", i)
		}
	}
	for _, track := range body.Tracks {
		if track.ID == "seed1" {
			t.Error("seed track leaked into results")
		}
		if track.Strategy == "" {
			t.Errorf("track %s missing strategy label", track.ID)
		}
	}
}

func TestSimilarTracksPreservesRequestID(t *testing.T) {
	handler := newTestHandler(&stubCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-id-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "caller-id-123" {
		t.Errorf("X-Request-ID: got %q, want caller's id preserved", got)
	}
}

func TestSimilarTracksErrors(t *testing.T) {
	tests := []struct {
		name       string
		catalog    *stubCatalog
		target     string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid limit",
			catalog:    &stubCatalog{},
			target:     "/api/v1/tracks/seed1/similar?limit=abc",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "zero limit",
			catalog:    &stubCatalog{},
			target:     "/api/v1/tracks/seed1/similar?limit=0",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown seed",
			catalog:    &stubCatalog{tracks: map[string]domain.TrackMetadata{}},
			target:     "/api/v1/tracks/missing/similar",
			wantStatus: http.StatusNotFound,
			wantCode:   "TRACK_NOT_FOUND",
		},
		{
			name:       "upstream unavailable",
			catalog:    &stubCatalog{err: ports.ErrUpstreamUnavailable},
			target:     "/api/v1/tracks/seed1/similar",
			wantStatus: http.StatusBadGateway,
			wantCode:   "CATALOG_UNAVAILABLE",
		},
		{
			name:       "upstream rejected",
			catalog:    &stubCatalog{err: ports.ErrUpstreamRejected},
			target:     "/api/v1/tracks/seed1/similar",
			wantStatus: http.StatusBadGateway,
			wantCode:   "CATALOG_UNAVAILABLE",
		},
		{
			name:       "upstream timeout",
			catalog:    &stubCatalog{err: ports.ErrUpstreamTimeout},
			target:     "/api/v1/tracks/seed1/similar",
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "CATALOG_TIMEOUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(tt.catalog)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d, body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var body errorResponse
			if err := gojson.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code: got %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error == "" {
				t.Error("expected a non-empty error message")
			}
		})
	}
}

func TestSimilarTracksCapsLimit(t *testing.T) {
	catalog := &stubCatalog{
		tracks: map[string]domain.TrackMetadata{
			"seed1": {ID: "seed1", Title: "Seed", Artist: "A", DurationMs: 200000, Popularity: 50},
		},
	}
	handler := newTestHandler(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tracks/seed1/similar?limit=500", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", rec.Code, rec.Body.String())
	}
}
