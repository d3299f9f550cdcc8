package citations

import (
	"context"
	"log"
	"sync"
	"time"
)

// Source searches one bibliographic backend for evidence tying an ingredient
// to a health claim.
type Source interface {
	Name() string
	Search(ctx context.Context, ingredient, claim string, limit int) ([]Citation, error)
}

// DefaultMinInterval is the minimum spacing between requests to the same
// source, shared across all in-flight lookups.
const DefaultMinInterval = 100 * time.Millisecond

// Client fans an (ingredient, claim) query out to every enabled source,
// pools the results, deduplicates by normalized title, and ranks them.
// Individual source failures are logged and contribute nothing; the batch
// never fails because one backend is down.
type Client struct {
	sources     []Source
	minInterval time.Duration

	mu       sync.Mutex
	lastCall map[string]time.Time
}

// NewClient builds a client over the given sources. minInterval <= 0 uses
// the default spacing.
func NewClient(sources []Source, minInterval time.Duration) *Client {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Client{
		sources:     sources,
		minInterval: minInterval,
		lastCall:    map[string]time.Time{},
	}
}

// Search queries every source for the (ingredient, claim) pair and returns
// at most maxResults citations ordered by the composite relevance key.
func (c *Client) Search(ctx context.Context, ingredient, claim string, maxResults int) []Citation {
	if maxResults <= 0 {
		maxResults = 3
	}
	if len(c.sources) == 0 || ingredient == "" {
		return nil
	}

	type sourceResult struct {
		name  string
		cites []Citation
		err   error
	}

	ch := make(chan sourceResult, len(c.sources))
	var wg sync.WaitGroup
	for _, src := range c.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			if err := c.pace(ctx, src.Name()); err != nil {
				ch <- sourceResult{name: src.Name(), err: err}
				return
			}
			cites, err := src.Search(ctx, ingredient, claim, maxResults)
			ch <- sourceResult{name: src.Name(), cites: cites, err: err}
		}(src)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	var pooled []Citation
	for res := range ch {
		if res.err != nil {
			log.Printf("citations source_failed source=%s ingredient=%q err=%v", res.name, ingredient, res.err)
			continue
		}
		pooled = append(pooled, res.cites...)
	}

	deduped := deduplicate(pooled)
	rank(deduped)
	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}
	return deduped
}

// pace enforces the per-source minimum inter-request spacing. The wait
// respects ctx so a cancelled pipeline never blocks here.
func (c *Client) pace(ctx context.Context, source string) error {
	c.mu.Lock()
	now := time.Now()
	next := c.lastCall[source].Add(c.minInterval)
	if next.Before(now) {
		next = now
	}
	c.lastCall[source] = next
	wait := next.Sub(now)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
