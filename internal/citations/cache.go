package citations

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/meatwise/assessment-engine/internal/cache"
)

// DefaultCacheTTL keeps ingredient-level citation sets for 30 days; the
// literature on an additive moves slowly.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Cache stores ranked citation sets keyed by (normalized ingredient, risk
// tier), so entries are shared across unrelated products containing the same
// ingredient.
type Cache struct {
	store cache.Store
	ttl   time.Duration
}

func NewCache(store cache.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{store: store, ttl: ttl}
}

func (c *Cache) key(ingredient, risk string) string {
	return cache.Key("citations", ingredient, risk)
}

// Get returns the cached citation set for an ingredient at a risk tier.
// Store failures read as misses.
func (c *Cache) Get(ctx context.Context, ingredient, risk string) ([]Citation, bool) {
	blob, ok, err := c.store.Get(ctx, c.key(ingredient, risk))
	if err != nil {
		log.Printf("citations cache_get_failed ingredient=%q err=%v", ingredient, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var cites []Citation
	if err := json.Unmarshal(blob, &cites); err != nil {
		log.Printf("citations cache_decode_failed ingredient=%q err=%v", ingredient, err)
		return nil, false
	}
	return cites, true
}

// Put stores a citation set. An empty set is cached too: knowing a search
// came up dry is as valuable as the hits.
func (c *Cache) Put(ctx context.Context, ingredient, risk string, cites []Citation) {
	if cites == nil {
		cites = []Citation{}
	}
	blob, err := json.Marshal(cites)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.key(ingredient, risk), blob, c.ttl); err != nil {
		log.Printf("citations cache_set_failed ingredient=%q err=%v", ingredient, err)
	}
}

// LookupSet resolves a whole ingredient→risk set against the cache in one
// pass, returning the per-ingredient hits and the hit ratio. The orchestrator
// uses the ratio for its ≥70% partial-hit policy; the cache itself enforces
// nothing.
func (c *Cache) LookupSet(ctx context.Context, tiers map[string]string) (map[string][]Citation, float64) {
	hits := make(map[string][]Citation, len(tiers))
	if len(tiers) == 0 {
		return hits, 0
	}
	found := 0
	for ingredient, risk := range tiers {
		if cites, ok := c.Get(ctx, ingredient, risk); ok {
			hits[ingredient] = cites
			found++
		}
	}
	return hits, float64(found) / float64(len(tiers))
}
