// Package catalog is the HTTP adapter for the external music catalog
// service: search, track fetch, auth token lifecycle and the optional
// metadata cache all live behind this boundary.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/worker"
)

const defaultSearchLimit = 10

// Config tunes the catalog client.
type Config struct {
	BaseURL      string
	MaxRetries   int
	BaseBackoff  time.Duration
	RateLimitRPS float64 // 0 disables client-side rate limiting
}

// Client is the HTTP adapter for the catalog service. It implements
// ports.CatalogClient and keeps every upstream concern — auth, retries,
// rate limiting, circuit breaking, metadata caching — on its side of the
// boundary.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      TokenProvider
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]domain.Candidate]
	maxRetries  int
	baseBackoff time.Duration

	cache     ports.TrackCache
	writeback *worker.Pool
}

// compile-time interface assertion
var _ ports.CatalogClient = (*Client)(nil)

// NewClient constructs a catalog client. httpClient may be nil to use
// http.DefaultClient.
func NewClient(httpClient *http.Client, cfg Config, tokens TokenProvider) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), int(cfg.RateLimitRPS)+1)
	}

	breaker := gobreaker.NewCircuitBreaker[[]domain.Candidate](gobreaker.Settings{
		Name:        "catalog-search",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Only upstream health trips the breaker; rejected queries and
			// caller-side timeouts are not its business.
			return err == nil || !errors.Is(err, ports.ErrUpstreamUnavailable)
		},
	})

	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		tokens:      tokens,
		limiter:     limiter,
		breaker:     breaker,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.BaseBackoff,
	}
}

// EnableCache wires the optional metadata cache. Reads are synchronous;
// writes go through the pool so GetTrack never blocks on storage.
func (c *Client) EnableCache(cache ports.TrackCache, writeback *worker.Pool) {
	c.cache = cache
	c.writeback = writeback
}

// Search runs one strategy query and returns up to limit candidates,
// dropping excludeID from the results. Failures map onto the upstream
// error taxonomy; an open breaker reports as upstream unavailable.
func (c *Client) Search(ctx context.Context, query string, excludeID string, limit int) ([]domain.Candidate, error) {
	if limit < 1 {
		limit = defaultSearchLimit
	}

	candidates, err := c.breaker.Execute(func() ([]domain.Candidate, error) {
		return c.search(ctx, query, excludeID, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("catalog adapter: circuit open: %w", ports.ErrUpstreamUnavailable)
		}
		return nil, err
	}
	return candidates, nil
}

func (c *Client) search(ctx context.Context, query string, excludeID string, limit int) ([]domain.Candidate, error) {
	searchURL, err := url.Parse(c.baseURL + "/v1/search")
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: invalid search url: %w", err)
	}

	params := searchURL.Query()
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))
	searchURL.RawQuery = params.Encode()

	resp, err := c.get(ctx, searchURL.String())
	if err != nil {
		return nil, translateFailure("search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("search", resp.StatusCode)
	}

	var body searchResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("catalog adapter: search decode error: %v: %w", err, ports.ErrUpstreamUnavailable)
	}

	candidates := make([]domain.Candidate, 0, len(body.Tracks.Items))
	for _, wt := range body.Tracks.Items {
		if excludeID != "" && wt.ID == excludeID {
			continue
		}
		candidates = append(candidates, mapCandidate(wt))
	}
	return candidates, nil
}

// GetTrack fetches metadata for one track, consulting the metadata cache
// first when one is wired.
func (c *Client) GetTrack(ctx context.Context, id string) (domain.TrackMetadata, error) {
	if c.cache != nil {
		track, ok, err := c.cache.Get(ctx, id)
		if err != nil {
			log.Printf("WARN catalog adapter: cache read for %s failed: %v", id, err)
		} else if ok {
			return track, nil
		}
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/v1/tracks/%s", c.baseURL, url.PathEscape(id)))
	if err != nil {
		return domain.TrackMetadata{}, translateFailure("track fetch", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return domain.TrackMetadata{}, fmt.Errorf("catalog adapter: %w", &ports.TrackNotFoundError{ID: id})
	default:
		return domain.TrackMetadata{}, statusError("track fetch", resp.StatusCode)
	}

	var wt wireTrack
	if err := gojson.NewDecoder(resp.Body).Decode(&wt); err != nil {
		return domain.TrackMetadata{}, fmt.Errorf("catalog adapter: track decode error: %v: %w", err, ports.ErrUpstreamUnavailable)
	}

	track := mapTrackMetadata(wt)
	if c.writeback != nil {
		c.writeback.Submit(worker.Job{Track: track})
	}
	return track, nil
}

// get waits for the rate limiter, attaches a bearer token and issues the
// request through the retry layer.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.doRequestWithRetry(req)
}

// translateFailure maps transport-level failures onto the taxonomy.
// Failures that already carry a taxonomy sentinel pass through untouched.
func translateFailure(op string, err error) error {
	switch {
	case errors.Is(err, ports.ErrUpstreamUnavailable),
		errors.Is(err, ports.ErrUpstreamTimeout),
		errors.Is(err, ports.ErrUpstreamRejected):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("catalog adapter: %s timed out: %w", op, ports.ErrUpstreamTimeout)
	default:
		return fmt.Errorf("catalog adapter: %s failed: %v: %w", op, err, ports.ErrUpstreamUnavailable)
	}
}

// statusError maps a non-success HTTP status onto the taxonomy.
func statusError(op string, status int) error {
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("catalog adapter: %s status %d: %w", op, status, ports.ErrUpstreamUnavailable)
	}
	return fmt.Errorf("catalog adapter: %s status %d: %w", op, status, ports.ErrUpstreamRejected)
}
