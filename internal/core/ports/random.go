package ports

// RandomSource supplies the jitter used by the feature estimator. It is a
// capability passed in by the caller: production seeds it from the track
// ID while tests inject a fixed seed.
type RandomSource interface {
	// Float64 returns a value in [0,1).
	Float64() float64
}
