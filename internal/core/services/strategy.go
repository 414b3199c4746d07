package services

import (
	"fmt"
	"strings"

	"github.com/ewilliams-labs/segue/internal/core/domain"
)

// Strategy priorities. Lower is stronger; the rank tie-break and the dedup
// merge order both rely on these.
const (
	priorityGenre = iota + 1
	prioritySameArtist
	priorityKeywords
	priorityDecade
	prioritySameAlbum
)

// StrategyGenerator turns a seed track and its FeatureVector into an
// ordered list of catalog queries. Queries exclude the seed artist or
// title where the point of the strategy is surfacing different tracks.
type StrategyGenerator struct{}

// NewStrategyGenerator constructs a StrategyGenerator.
func NewStrategyGenerator() *StrategyGenerator {
	return &StrategyGenerator{}
}

// Generate returns up to five strategies, highest priority first.
// Strategies whose precondition is unsatisfied (unknown release year,
// unknown album) are omitted rather than emitted with empty queries.
func (g *StrategyGenerator) Generate(seed domain.TrackMetadata, features domain.FeatureVector) []domain.SearchStrategy {
	strategies := []domain.SearchStrategy{
		{
			Label:    "same genre, different artist",
			Query:    fmt.Sprintf("genre:%q NOT artist:%q", inferGenre(features), seed.Artist),
			Priority: priorityGenre,
		},
		{
			Label:    "same artist, different track",
			Query:    fmt.Sprintf("artist:%q NOT track:%q", seed.Artist, seed.Title),
			Priority: prioritySameArtist,
		},
		{
			Label:    "mood keywords",
			Query:    fmt.Sprintf("%s NOT artist:%q", strings.Join(moodKeywords(features), " "), seed.Artist),
			Priority: priorityKeywords,
		},
	}

	if seed.ReleaseYear > 0 {
		decade := (seed.ReleaseYear / 10) * 10
		strategies = append(strategies, domain.SearchStrategy{
			Label:    "same decade",
			Query:    fmt.Sprintf("year:%d-%d NOT artist:%q", decade, decade+9, seed.Artist),
			Priority: priorityDecade,
		})
	}

	if seed.Album != "" {
		strategies = append(strategies, domain.SearchStrategy{
			Label:    "same album, different track",
			Query:    fmt.Sprintf("album:%q NOT track:%q", seed.Album, seed.Title),
			Priority: prioritySameAlbum,
		})
	}

	return strategies
}

// inferGenre maps the feature vector onto a coarse genre label via fixed
// thresholds, checked in order.
func inferGenre(f domain.FeatureVector) string {
	switch {
	case f.Energy > 0.8 && f.Danceability > 0.7:
		return "electronic dance"
	case f.Energy > 0.7 && f.Tempo > 140:
		return "rock"
	case f.Acousticness > 0.6:
		return "folk"
	case f.Danceability > 0.7:
		return "pop"
	case f.Valence < 0.3:
		return "indie"
	case f.Energy < 0.4:
		return "ambient"
	default:
		return "pop"
	}
}

// moodKeywords derives descriptive search keywords from feature
// thresholds. When nothing matches it falls back to a neutral pair so the
// strategy always has a usable query.
func moodKeywords(f domain.FeatureVector) []string {
	var kw []string
	if f.Energy > 0.7 {
		kw = append(kw, "upbeat")
	}
	if f.Energy < 0.3 {
		kw = append(kw, "chill")
	}
	if f.Danceability > 0.7 {
		kw = append(kw, "dance")
	}
	if f.Valence > 0.7 {
		kw = append(kw, "feel good")
	}
	if f.Valence < 0.3 {
		kw = append(kw, "melancholy")
	}
	if f.Acousticness > 0.6 {
		kw = append(kw, "acoustic")
	}
	if f.Tempo > 140 {
		kw = append(kw, "fast")
	}
	if len(kw) == 0 {
		kw = []string{"melodic", "vibes"}
	}
	if len(kw) > 3 {
		kw = kw[:3]
	}
	return kw
}
