// Package retry centralizes the backoff policy used by every component that
// talks to an external service: the LLM callers and the literature sources.
package retry

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BaseDelay is the starting backoff duration. Tests override this to avoid
// real sleeps.
var BaseDelay = 500 * time.Millisecond

// Policy describes how a call is retried. The zero value retries nothing.
type Policy struct {
	MaxAttempts int
	MaxDelay    time.Duration
	Jitter      bool
	// Retryable decides whether an error is worth another attempt. A nil
	// predicate retries every error.
	Retryable func(error) bool
}

// RateLimited is the standard policy for calls that should only be retried
// on rate-limit signals: up to 2 extra attempts with jittered backoff.
func RateLimited(retryable func(error) bool) Policy {
	return Policy{MaxAttempts: 3, MaxDelay: 8 * time.Second, Jitter: true, Retryable: retryable}
}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
// The last error is returned when all attempts fail.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, Delay(p, attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// Delay returns the backoff before the next attempt: BaseDelay doubled per
// attempt, capped at MaxDelay, with optional jitter in [delay/2, delay].
func Delay(p Policy, attempt int) time.Duration {
	d := BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter && d > 0 {
		half := d / 2
		d = half + time.Duration(rand.Int63n(int64(half)+1))
	}
	return d
}

// DoRequest executes req and retries only on HTTP 429, honouring any
// Retry-After header, up to the policy's attempt budget. Non-429 responses
// are returned as-is, including the final 429 once retries are exhausted, so
// callers can inspect the status.
func DoRequest(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= attempts {
			return resp, nil
		}

		wait := retryAfter(resp.Header.Get("Retry-After"))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if wait <= 0 {
			wait = Delay(p, attempt)
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
