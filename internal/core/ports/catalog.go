package ports

import (
	"context"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// CatalogClient executes queries against the external music catalog.
// Authentication and token lifecycle are internal to implementations; the
// core only requires that calls fail cleanly with one of the taxonomy
// errors rather than hang.
type CatalogClient interface {
	// Search runs one strategy query and returns up to limit candidates.
	// excludeID, when non-empty, drops that track ID from the results.
	Search(ctx context.Context, query string, excludeID string, limit int) ([]domain.Candidate, error)

	// GetTrack fetches metadata for a single track by its catalog ID.
	GetTrack(ctx context.Context, id string) (domain.TrackMetadata, error)
}
