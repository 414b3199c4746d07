package domain

import "math"

// Provenance records how a FeatureVector was produced.
type Provenance string

const (
	// ProvenanceEstimated marks vectors produced by the heuristic estimator.
	ProvenanceEstimated Provenance = "estimated"
	// ProvenanceMeasured is reserved for a future real-analysis path.
	ProvenanceMeasured Provenance = "measured"
)

// Tempo bounds in BPM.
const (
	TempoMin = 60.0
	TempoMax = 200.0
)

// FeatureVector is a heuristic mood/audio descriptor for one track. All
// fields except Loudness and Tempo are bounded to [0,1]; Loudness is in dB
// (typically -60..0) and Tempo is clamped to [TempoMin, TempoMax].
type FeatureVector struct {
	Acousticness     float64
	Danceability     float64
	Energy           float64
	Instrumentalness float64
	Liveness         float64
	Loudness         float64
	Speechiness      float64
	Tempo            float64
	Valence          float64
	Provenance       Provenance
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// ClampTempo bounds v to the valid BPM range.
func ClampTempo(v float64) float64 {
	return math.Min(TempoMax, math.Max(TempoMin, v))
}

// Clamp re-applies every field's bound. Adjustments clamp as they go, so
// this is the final safety net rather than the primary mechanism.
func (f FeatureVector) Clamp() FeatureVector {
	f.Acousticness = Clamp01(f.Acousticness)
	f.Danceability = Clamp01(f.Danceability)
	f.Energy = Clamp01(f.Energy)
	f.Instrumentalness = Clamp01(f.Instrumentalness)
	f.Liveness = Clamp01(f.Liveness)
	f.Speechiness = Clamp01(f.Speechiness)
	f.Valence = Clamp01(f.Valence)
	f.Tempo = ClampTempo(f.Tempo)
	return f
}

// InBounds reports whether every bounded field sits inside its declared range.
func (f FeatureVector) InBounds() bool {
	for _, v := range []float64{
		f.Acousticness, f.Danceability, f.Energy, f.Instrumentalness,
		f.Liveness, f.Speechiness, f.Valence,
	} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return f.Tempo >= TempoMin && f.Tempo <= TempoMax
}
