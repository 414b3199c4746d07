package ports

import (
	"errors"
	"fmt"
)

// Error taxonomy for a resolution call. Per-strategy upstream failures are
// absorbed inside the aggregator; only seed-fetch failures and invalid
// input surface to the caller.
var (
	// ErrUpstreamUnavailable indicates a network failure or 5xx from the catalog.
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")
	// ErrUpstreamRejected indicates the catalog rejected the request (4xx).
	ErrUpstreamRejected = errors.New("catalog rejected request")
	// ErrUpstreamTimeout indicates a catalog call exceeded its deadline.
	ErrUpstreamTimeout = errors.New("catalog request timed out")
	// ErrNotFound indicates the requested track does not exist upstream.
	ErrNotFound = errors.New("track not found")
	// ErrInvalidInput indicates a missing or out-of-range request parameter.
	ErrInvalidInput = errors.New("invalid input")
)

// TrackNotFoundError provides context for a missing seed track.
type TrackNotFoundError struct {
	ID string
}

func (e *TrackNotFoundError) Error() string {
	if e.ID == "" {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("track %q not found", e.ID)
}

func (e *TrackNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
