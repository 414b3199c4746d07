package services

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
)

const defaultPerStrategyTimeout = 3 * time.Second

// Aggregator fans the strategies out to the catalog concurrently, fans the
// results back in, deduplicates, and scores. A failing strategy contributes
// zero candidates and never aborts its siblings.
type Aggregator struct {
	client             ports.CatalogClient
	perStrategyTimeout time.Duration
}

// NewAggregator constructs an Aggregator. timeout bounds each individual
// strategy query; zero selects the default.
func NewAggregator(client ports.CatalogClient, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = defaultPerStrategyTimeout
	}
	return &Aggregator{client: client, perStrategyTimeout: timeout}
}

type strategyResult struct {
	index      int
	candidates []domain.Candidate
}

// Aggregate runs every strategy concurrently and returns the deduplicated,
// scored candidates. Strategies must arrive in priority order; the merge
// walks them in that order so dedup is stable regardless of completion
// order. If ctx expires before all strategies report, Aggregate proceeds
// with whatever has arrived. The seed's feature vector shapes the
// strategies upstream but plays no part here: scoring compares candidate
// metadata against the seed's metadata only.
func (a *Aggregator) Aggregate(ctx context.Context, strategies []domain.SearchStrategy, seed domain.TrackMetadata, perStrategyLimit int) []domain.ScoredCandidate {
	if len(strategies) == 0 {
		return nil
	}

	results := make(chan strategyResult, len(strategies))
	var g errgroup.Group
	for i, st := range strategies {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(ctx, a.perStrategyTimeout)
			defer cancel()

			candidates, err := a.client.Search(qctx, st.Query, seed.ID, perStrategyLimit)
			if err != nil {
				log.Printf("WARN aggregator: strategy %q failed: %v", st.Label, err)
				results <- strategyResult{index: i}
				return nil
			}
			results <- strategyResult{index: i, candidates: candidates}
			return nil
		})
	}
	go func() {
		// Reap the goroutines; the buffered channel means none can block.
		_ = g.Wait()
	}()

	// Fan-in barrier: wait for every strategy or the caller's deadline,
	// whichever comes first. Slots that never report stay empty.
	slots := make([][]domain.Candidate, len(strategies))
	received := 0
collect:
	for received < len(strategies) {
		select {
		case r := <-results:
			slots[r.index] = r.candidates
			received++
		case <-ctx.Done():
			log.Printf("WARN aggregator: deadline elapsed with %d/%d strategies reported", received, len(strategies))
			break collect
		}
	}

	seen := make(map[string]struct{})
	var scored []domain.ScoredCandidate
	for i, st := range strategies {
		for _, c := range slots[i] {
			if c.ID == seed.ID {
				continue
			}
			c.StrategyLabel = st.Label
			c.StrategyPriority = st.Priority
			key := c.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			scored = append(scored, domain.ScoredCandidate{
				Candidate: c,
				Score:     scoreCandidate(c, seed),
			})
		}
	}
	return scored
}

// scoreCandidate computes the similarity score in [0,1]. The formula is
// deliberately unnormalized across strategies: start at 1.0, penalize
// artist leakage and popularity/duration distance, reward previews and a
// matching explicit flag.
func scoreCandidate(c domain.Candidate, seed domain.TrackMetadata) float64 {
	score := 1.0

	// Strategies already filter the seed artist out, but leakage still
	// gets penalized here.
	if strings.EqualFold(c.Artist, seed.Artist) {
		score -= 0.3
	}

	popDiff := math.Abs(float64(c.Popularity-seed.Popularity)) / 100
	score -= math.Min(popDiff, 1) * 0.1

	if seed.DurationMs > 0 {
		durDiff := math.Abs(float64(c.DurationMs-seed.DurationMs)) / float64(seed.DurationMs)
		score -= math.Min(durDiff, 0.5) * 0.1
	}

	if c.HasPreview {
		score += 0.1
	}
	if c.Explicit == seed.Explicit {
		score += 0.05
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
