// Package tyregistry provides HTTP clients for the external package and
// source-hosting registries tycore consults when scoring availability:
// the TYPO3 Extension Repository, Packagist, and GitHub. Each client
// wraps its requests in a rate limiter and a circuit breaker so a slow
// or failing upstream degrades the whole analysis run gracefully instead
// of stalling it.
package tyregistry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// guardedClient bundles an *http.Client with the rate limiter and
// circuit breaker every registry client in this package shares: the same
// *http.Client-field/baseURL-const client shape used throughout this
// codebase, plus a resilience layer for upstream calls that can be slow,
// rate-limited, or flaky.
type guardedClient struct {
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	baseURL string
}

// newGuardedClient builds a client with a sensible default rate (5 req/s,
// burst 5) and circuit breaker (trip after 3 consecutive failures, 30s
// open period) for the given breaker name and base URL.
func newGuardedClient(name, baseURL string) *guardedClient {
	return &guardedClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 2,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		baseURL: baseURL,
	}
}

// do executes req through the rate limiter and circuit breaker, returning
// the raw response body on a 200. A non-200 status or a request error
// counts as a breaker failure.
func (g *guardedClient) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusNotFound {
			return nil, errNotFound
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return readAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}
