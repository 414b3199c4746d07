package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Error codes surfaced to clients alongside the HTTP status.
const (
	errCodeInvalidInput = "INVALID_INPUT"
	errCodeNotFound     = "TRACK_NOT_FOUND"
	errCodeUpstream     = "CATALOG_UNAVAILABLE"
	errCodeUpstreamSlow = "CATALOG_TIMEOUT"
)

type similarTrackResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album,omitempty"`
	DurationMs int     `json:"duration_ms"`
	Popularity int     `json:"popularity"`
	Explicit   bool    `json:"explicit"`
	HasPreview bool    `json:"has_preview"`
	Strategy   string  `json:"strategy"`
	Score      float64 `json:"score"`
}

type similarResponse struct {
	SeedID string                 `json:"seed_id"`
	Count  int                    `json:"count"`
	Tracks []similarTrackResponse `json:"tracks"`
}

// SimilarTracks handles GET /api/v1/tracks/{id}/similar?limit=N
func (h *Handler) SimilarTracks(w http.ResponseWriter, r *http.Request) {
	seedID := chi.URLParam(r, "id")

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorWithCode(w, http.StatusBadRequest, "limit must be an integer", errCodeInvalidInput)
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.resolveTimeout)
	defer cancel()

	results, err := h.resolver.ResolveSimilar(ctx, seedID, limit)
	if err != nil {
		h.writeResolveError(w, err)
		return
	}

	resp := similarResponse{
		SeedID: seedID,
		Count:  len(results),
		Tracks: make([]similarTrackResponse, 0, len(results)),
	}
	for _, sc := range results {
		resp.Tracks = append(resp.Tracks, mapScoredCandidate(sc))
	}
	writeJSON(w, http.StatusOK, resp)
}

func mapScoredCandidate(sc domain.ScoredCandidate) similarTrackResponse {
	return similarTrackResponse{
		ID:         sc.ID,
		Title:      sc.Title,
		Artist:     sc.Artist,
		Album:      sc.Album,
		DurationMs: sc.DurationMs,
		Popularity: sc.Popularity,
		Explicit:   sc.Explicit,
		HasPreview: sc.HasPreview,
		Strategy:   sc.StrategyLabel,
		Score:      sc.Score,
	}
}

// writeResolveError maps the service error taxonomy onto HTTP statuses.
func (h *Handler) writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrInvalidInput):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidInput)
	case errors.Is(err, ports.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, ports.ErrUpstreamTimeout):
		writeErrorWithCode(w, http.StatusGatewayTimeout, err.Error(), errCodeUpstreamSlow)
	case errors.Is(err, ports.ErrUpstreamRejected), errors.Is(err, ports.ErrUpstreamUnavailable):
		writeErrorWithCode(w, http.StatusBadGateway, err.Error(), errCodeUpstream)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
