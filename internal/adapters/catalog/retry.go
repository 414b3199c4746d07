package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 500 * time.Millisecond
)

// doRequestWithRetry issues req, retrying transport errors, 429s and 5xx
// responses with exponential backoff. A Retry-After header overrides the
// computed backoff. All requests here are bodyless GETs, so no body
// rewinding is needed.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	maxRetries := c.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	baseBackoff := c.baseBackoff
	if baseBackoff <= 0 {
		baseBackoff = defaultBaseBackoff
	}

	ctx := req.Context()
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("catalog adapter: request canceled: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		attemptNum := attempt + 1
		if err != nil {
			log.Printf("WARN catalog adapter: retry attempt %d/%d after error: %v", attemptNum, maxRetries, err)
		} else if resp != nil {
			log.Printf("WARN catalog adapter: retry attempt %d/%d after status %d", attemptNum, maxRetries, resp.StatusCode)
			_ = resp.Body.Close()
		}

		if attempt == maxRetries-1 {
			if err != nil {
				return nil, fmt.Errorf("catalog adapter: request failed after %d attempts: %w", maxRetries, err)
			}
			if resp != nil {
				return nil, &upstreamStatusError{status: resp.StatusCode, attempts: maxRetries}
			}
			return nil, fmt.Errorf("catalog adapter: request failed after %d attempts", maxRetries)
		}

		backoff := baseBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = retryAfter
		}

		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("catalog adapter: request failed after %d attempts", maxRetries)
}

// upstreamStatusError reports the final status after exhausting retries.
type upstreamStatusError struct {
	status   int
	attempts int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("catalog adapter: request failed after %d attempts: status %d", e.attempts, e.status)
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}

	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("catalog adapter: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
