package domain

// SearchStrategy is one independent catalog query formulated to surface a
// different flavor of "similar". Priority orders strategies for merging and
// acts as the ranking tie-break; lower is stronger.
type SearchStrategy struct {
	Label    string
	Query    string
	Priority int
}
