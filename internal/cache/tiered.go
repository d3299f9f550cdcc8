package cache

import (
	"context"
	"log"
	"time"
)

// Tiered layers a fast in-process store in front of an optional shared
// store. Reads check the fast tier first and promote shared hits; writes go
// to both. Shared-tier failures degrade to the fast tier alone: a cache that
// cannot be reached must never fail a lookup.
type Tiered struct {
	fast   Store
	shared Store // may be nil
}

// NewTiered builds a two-tier store. shared may be nil for single-process
// deployments.
func NewTiered(fast, shared Store) *Tiered {
	return &Tiered{fast: fast, shared: shared}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok, err := t.fast.Get(ctx, key); err == nil && ok {
		return value, true, nil
	}
	if t.shared == nil {
		return nil, false, nil
	}
	value, ok, err := t.shared.Get(ctx, key)
	if err != nil {
		log.Printf("cache shared_tier_get_failed key=%s err=%v", shortKey(key), err)
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	// Promote with a short TTL; the shared tier remains authoritative for
	// the full lifetime.
	_ = t.fast.Set(ctx, key, value, time.Hour)
	return value, true, nil
}

func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := t.fast.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if t.shared != nil {
		if err := t.shared.Set(ctx, key, value, ttl); err != nil {
			log.Printf("cache shared_tier_set_failed key=%s err=%v", shortKey(key), err)
		}
	}
	return nil
}

func (t *Tiered) Delete(ctx context.Context, key string) error {
	err := t.fast.Delete(ctx, key)
	if t.shared != nil {
		if serr := t.shared.Delete(ctx, key); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func (t *Tiered) Close() error {
	err := t.fast.Close()
	if t.shared != nil {
		if serr := t.shared.Close(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}
