package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

const defaultPerStrategyLimit = 10

// ResolverConfig tunes the resolution pipeline. Zero values select
// defaults.
type ResolverConfig struct {
	// PerStrategyLimit caps the candidates requested per strategy query.
	PerStrategyLimit int
	// PerStrategyTimeout bounds each individual catalog query.
	PerStrategyTimeout time.Duration
	// NewRand supplies the jitter source for estimating a given seed
	// track. The default seeds from the track ID, so repeated resolutions
	// of the same track produce the same vector; tests inject a
	// fixed-seed factory.
	NewRand func(trackID string) ports.RandomSource
}

// Resolver coordinates the similarity pipeline: fetch seed, estimate
// features, generate strategies, aggregate concurrently, rank.
type Resolver struct {
	catalog          ports.CatalogClient
	estimator        *Estimator
	strategies       *StrategyGenerator
	aggregator       *Aggregator
	newRand          func(trackID string) ports.RandomSource
	perStrategyLimit int
}

// NewResolver constructs a Resolver around the given catalog client.
func NewResolver(catalog ports.CatalogClient, cfg ResolverConfig) *Resolver {
	if cfg.PerStrategyLimit < 1 {
		cfg.PerStrategyLimit = defaultPerStrategyLimit
	}
	if cfg.NewRand == nil {
		cfg.NewRand = NewTrackSeededSource
	}
	return &Resolver{
		catalog:          catalog,
		estimator:        NewEstimator(),
		strategies:       NewStrategyGenerator(),
		aggregator:       NewAggregator(catalog, cfg.PerStrategyTimeout),
		newRand:          cfg.NewRand,
		perStrategyLimit: cfg.PerStrategyLimit,
	}
}

// ResolveSimilar returns up to desiredCount tracks similar to the seed,
// sorted best first. Only an unfetchable seed or invalid input is fatal;
// an empty result is a valid success. The caller's ctx deadline bounds the
// whole call.
func (r *Resolver) ResolveSimilar(ctx context.Context, seedID string, desiredCount int) ([]domain.ScoredCandidate, error) {
	// 1. Reject invalid input before any work begins.
	if seedID == "" {
		return nil, fmt.Errorf("service: seed track id is required: %w", ports.ErrInvalidInput)
	}
	if desiredCount < 1 {
		return nil, fmt.Errorf("service: desired count must be at least 1: %w", ports.ErrInvalidInput)
	}

	// 2. Fetch the seed track; this is the only fatal upstream call.
	seed, err := r.catalog.GetTrack(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch seed track: %w", err)
	}
	seed = seed.Normalized()

	// 3. Estimate features and derive strategies (pure, non-blocking).
	features := r.estimator.Estimate(seed, r.newRand(seedID))
	strategies := r.strategies.Generate(seed, features)
	log.Printf("DEBUG service: resolving %q with %d strategies", seedID, len(strategies))

	// 4. Fan out, score, dedup, rank.
	scored := r.aggregator.Aggregate(ctx, strategies, seed, r.perStrategyLimit)
	return Rank(scored, desiredCount), nil
}
