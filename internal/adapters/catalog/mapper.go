package catalog

import "github.com/ewilliams-labs/segue/internal/core/domain"

// mapTrackMetadata converts a raw catalog track to domain metadata.
func mapTrackMetadata(wt wireTrack) domain.TrackMetadata {
	return domain.TrackMetadata{
		ID:          wt.ID,
		Title:       wt.Name,
		Artist:      wt.primaryArtist(),
		Album:       wt.Album.Name,
		DurationMs:  wt.DurationMs,
		Popularity:  wt.Popularity,
		ReleaseYear: wt.releaseYear(),
		Explicit:    wt.Explicit,
		HasPreview:  wt.PreviewURL != "",
	}
}

// mapCandidate converts a raw catalog search hit to a domain candidate.
// The strategy label and priority are attached later by the aggregator.
func mapCandidate(wt wireTrack) domain.Candidate {
	return domain.Candidate{
		ID:         wt.ID,
		Title:      wt.Name,
		Artist:     wt.primaryArtist(),
		Album:      wt.Album.Name,
		DurationMs: wt.DurationMs,
		Popularity: wt.Popularity,
		Explicit:   wt.Explicit,
		HasPreview: wt.PreviewURL != "",
	}
}
