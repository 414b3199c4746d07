package domain

import "strings"

// Candidate is one catalog search hit, tagged with the strategy that
// produced it. Candidates are ephemeral: produced and consumed within a
// single resolution call.
type Candidate struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	DurationMs int
	Popularity int
	Explicit   bool
	HasPreview bool

	StrategyLabel    string
	StrategyPriority int
}

// ScoredCandidate pairs a Candidate with its similarity score in [0,1]
// (higher is better).
type ScoredCandidate struct {
	Candidate
	Score float64
}

// DedupKey returns the stable deduplication key for a candidate:
// lower-cased "title|primary-artist".
func (c Candidate) DedupKey() string {
	return strings.ToLower(c.Title) + "|" + strings.ToLower(c.Artist)
}
