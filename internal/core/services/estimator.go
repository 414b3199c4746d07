package services

import (
	"math"
	"strings"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

// Estimator derives a heuristic FeatureVector from track metadata. It is a
// rule-based fallback for when no real audio analysis is reachable: every
// adjustment clamps, so the math is total and the output is always in
// bounds, whatever the input.
type Estimator struct {
	rules []moodRule
}

// NewEstimator constructs an Estimator with the built-in mood rule table.
func NewEstimator() *Estimator {
	return &Estimator{rules: moodRules}
}

// baselineVector is the starting point before any heuristic applies.
var baselineVector = domain.FeatureVector{
	Acousticness:     0.3,
	Danceability:     0.5,
	Energy:           0.5,
	Instrumentalness: 0.1,
	Liveness:         0.1,
	Loudness:         -8.0,
	Speechiness:      0.05,
	Tempo:            120,
	Valence:          0.5,
}

// fieldAdjust is one additive adjustment with its own clamp window.
// Adjustments clamp independently, so stacked rules never push a field
// past the window of the last rule applied.
type fieldAdjust struct {
	field func(*domain.FeatureVector) *float64
	delta float64
	floor float64
	ceil  float64
}

func (a fieldAdjust) apply(f *domain.FeatureVector) {
	p := a.field(f)
	*p += a.delta
	if *p > a.ceil {
		*p = a.ceil
	}
	if *p < a.floor {
		*p = a.floor
	}
}

// moodRule maps a keyword set to its field adjustments. Matching is
// substring containment on the lowered title, not word-boundary matching,
// so "dancefloor" still counts as "dance".
type moodRule struct {
	category string
	keywords []string
	adjusts  []fieldAdjust

	// tempoFloor > 0 raises the tempo floor to tempoFloor plus up to
	// tempoFloorJitter BPM. tempoCeil > 0 caps the tempo.
	tempoFloor       float64
	tempoFloorJitter float64
	tempoCeil        float64
}

func acousticness(f *domain.FeatureVector) *float64     { return &f.Acousticness }
func danceability(f *domain.FeatureVector) *float64     { return &f.Danceability }
func energy(f *domain.FeatureVector) *float64           { return &f.Energy }
func instrumentalness(f *domain.FeatureVector) *float64 { return &f.Instrumentalness }
func valence(f *domain.FeatureVector) *float64          { return &f.Valence }

var moodRules = []moodRule{
	{
		category: "energetic",
		keywords: []string{"party", "dance", "hype", "power", "energy", "fire", "jump", "wild"},
		adjusts: []fieldAdjust{
			{field: energy, delta: 0.3, floor: 0, ceil: 0.9},
			{field: danceability, delta: 0.2, floor: 0, ceil: 0.9},
		},
		tempoFloor:       130,
		tempoFloorJitter: 10,
	},
	{
		category: "chill",
		keywords: []string{"chill", "relax", "calm", "slow", "dream", "mellow", "lofi"},
		adjusts: []fieldAdjust{
			{field: energy, delta: -0.3, floor: 0.1, ceil: 1},
			{field: acousticness, delta: 0.3, floor: 0, ceil: 0.9},
		},
		tempoCeil: 100,
	},
	{
		category: "sad",
		keywords: []string{"sad", "cry", "tears", "alone", "goodbye", "miss", "broken"},
		adjusts: []fieldAdjust{
			{field: valence, delta: -0.3, floor: 0.1, ceil: 1},
			{field: energy, delta: -0.2, floor: 0.1, ceil: 1},
			{field: acousticness, delta: 0.2, floor: 0, ceil: 0.9},
		},
	},
	{
		category: "happy",
		keywords: []string{"happy", "joy", "smile", "sunshine", "celebrate", "good"},
		adjusts: []fieldAdjust{
			{field: valence, delta: 0.3, floor: 0, ceil: 0.9},
			{field: danceability, delta: 0.15, floor: 0, ceil: 0.9},
			{field: energy, delta: 0.1, floor: 0, ceil: 0.9},
		},
	},
	{
		category: "romantic",
		keywords: []string{"love", "heart", "kiss", "romance", "baby", "forever"},
		adjusts: []fieldAdjust{
			{field: valence, delta: 0.2, floor: 0, ceil: 0.9},
			{field: acousticness, delta: 0.15, floor: 0, ceil: 0.9},
			{field: energy, delta: -0.1, floor: 0.2, ceil: 1},
		},
	},
}

// electronicArtistAdjusts applies when the artist name suggests an
// electronic act ("dj" or "edm").
var electronicArtistAdjusts = []fieldAdjust{
	{field: danceability, delta: 0.15, floor: 0, ceil: 0.95},
	{field: energy, delta: 0.1, floor: 0, ceil: 0.95},
}

// longTrackAdjusts applies to tracks longer than longTrackMs.
var longTrackAdjusts = []fieldAdjust{
	{field: acousticness, delta: 0.1, floor: 0, ceil: 0.9},
	{field: instrumentalness, delta: 0.2, floor: 0, ceil: 0.8},
}

// popularTrackAdjusts applies to tracks with popularity above popularityHigh.
var popularTrackAdjusts = []fieldAdjust{
	{field: danceability, delta: 0.05, floor: 0, ceil: 0.95},
	{field: energy, delta: 0.05, floor: 0, ceil: 0.95},
}

const (
	longTrackMs      = 300000
	popularityHigh   = 70
	electronicTempo  = 128.0
	jitterRange      = 0.05 // ±5% of the [0,1] range
	tempoJitterRange = 5.0  // ±5 BPM
)

// Estimate computes a FeatureVector for the given track. Deterministic for
// a fixed rng; the resolver's default rng is seeded from the track ID.
func (e *Estimator) Estimate(track domain.TrackMetadata, rng ports.RandomSource) domain.FeatureVector {
	t := track.Normalized()
	f := baselineVector
	tempoFloor := 0.0

	title := strings.ToLower(t.Title)
	for _, rule := range e.rules {
		if !containsAny(title, rule.keywords) {
			continue
		}
		for _, adj := range rule.adjusts {
			adj.apply(&f)
		}
		if rule.tempoFloor > 0 {
			floor := rule.tempoFloor + rng.Float64()*rule.tempoFloorJitter
			if floor > tempoFloor {
				tempoFloor = floor
			}
		}
		if rule.tempoCeil > 0 && f.Tempo > rule.tempoCeil {
			f.Tempo = rule.tempoCeil
		}
	}

	artist := strings.ToLower(t.Artist)
	if strings.Contains(artist, "dj") || strings.Contains(artist, "edm") {
		for _, adj := range electronicArtistAdjusts {
			adj.apply(&f)
		}
		if tempoFloor < electronicTempo {
			tempoFloor = electronicTempo
		}
	}

	if t.DurationMs > longTrackMs {
		for _, adj := range longTrackAdjusts {
			adj.apply(&f)
		}
	}

	if t.Popularity > popularityHigh {
		for _, adj := range popularTrackAdjusts {
			adj.apply(&f)
		}
	}

	// Independent jitter per field, re-clamped. Tempo jitters in BPM and
	// heuristic floors are re-applied afterwards so they hold as stated.
	f.Acousticness = domain.Clamp01(f.Acousticness + jitter(rng, jitterRange))
	f.Danceability = domain.Clamp01(f.Danceability + jitter(rng, jitterRange))
	f.Energy = domain.Clamp01(f.Energy + jitter(rng, jitterRange))
	f.Instrumentalness = domain.Clamp01(f.Instrumentalness + jitter(rng, jitterRange))
	f.Liveness = domain.Clamp01(f.Liveness + jitter(rng, jitterRange))
	f.Loudness += jitter(rng, jitterRange)
	f.Speechiness = domain.Clamp01(f.Speechiness + jitter(rng, jitterRange))
	f.Valence = domain.Clamp01(f.Valence + jitter(rng, jitterRange))
	f.Tempo += jitter(rng, tempoJitterRange)
	if f.Tempo < tempoFloor {
		f.Tempo = tempoFloor
	}
	f.Tempo = domain.ClampTempo(f.Tempo)

	f.Acousticness = round3(f.Acousticness)
	f.Danceability = round3(f.Danceability)
	f.Energy = round3(f.Energy)
	f.Instrumentalness = round3(f.Instrumentalness)
	f.Liveness = round3(f.Liveness)
	f.Loudness = round3(f.Loudness)
	f.Speechiness = round3(f.Speechiness)
	f.Valence = round3(f.Valence)

	f.Provenance = domain.ProvenanceEstimated
	return f.Clamp()
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func jitter(rng ports.RandomSource, scale float64) float64 {
	return (rng.Float64()*2 - 1) * scale
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
