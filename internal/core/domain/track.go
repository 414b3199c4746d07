package domain

// TrackMetadata describes a catalog track in the domain layer. Instances are
// immutable once fetched and live for the duration of one resolution request.
type TrackMetadata struct {
	ID          string
	Title       string
	Artist      string // primary artist name
	Album       string // optional
	DurationMs  int
	Popularity  int // 0-100
	ReleaseYear int // 0 when unknown
	Explicit    bool
	HasPreview  bool
}

// Defaults applied when the catalog omits optional fields.
const (
	DefaultPopularity = 50
	DefaultDurationMs = 180000
)

// Normalized returns a copy with missing optional fields replaced by their
// defaults, so downstream heuristics never divide by zero or skew on blanks.
func (t TrackMetadata) Normalized() TrackMetadata {
	if t.DurationMs <= 0 {
		t.DurationMs = DefaultDurationMs
	}
	if t.Popularity <= 0 {
		t.Popularity = DefaultPopularity
	}
	return t
}
