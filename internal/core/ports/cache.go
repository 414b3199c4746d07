package ports

import (
	"context"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// TrackCache stores raw catalog track metadata between requests. It is a
// collaborator-internal concern of the catalog adapter: the core pipeline
// never reads or writes it, and computed feature vectors are never stored.
type TrackCache interface {
	// Get returns the cached track and true, or false when absent.
	Get(ctx context.Context, id string) (domain.TrackMetadata, bool, error)
	// Put inserts or replaces the cached track.
	Put(ctx context.Context, track domain.TrackMetadata) error
}
