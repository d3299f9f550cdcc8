package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestKeyStableAndNormalized(t *testing.T) {
	a := Key("Sodium Nitrite", "high")
	b := Key("sodium  nitrite", "HIGH")
	if a != b {
		t.Fatalf("normalized keys differ: %s vs %s", a, b)
	}
	if a == Key("sodium nitrite", "low") {
		t.Fatal("different risk tags must produce different keys")
	}
	if a == Key("sodium nitritehigh") {
		t.Fatal("part boundaries must be preserved")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStoreInterval(0)
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q", got)
	}

	if _, ok, _ := s.Get(ctx, "absent"); ok {
		t.Fatal("absent key must miss")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStoreInterval(0)
	defer s.Close()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expired entry must miss")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry must be removed on read, len=%d", s.Len())
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStoreInterval(0)
	defer s.Close()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	_ = s.Set(ctx, "a", []byte("1"), time.Minute)
	_ = s.Set(ctx, "b", []byte("2"), time.Hour)

	s.now = func() time.Time { return now.Add(30 * time.Minute) }
	s.sweep()
	if s.Len() != 1 {
		t.Fatalf("expected one survivor, len=%d", s.Len())
	}
}

func TestMemoryStoreZeroTTLIgnored(t *testing.T) {
	s := NewMemoryStoreInterval(0)
	defer s.Close()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"), 0)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("zero-TTL set must be a no-op")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(t.TempDir() + "/cache.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get: %q ok=%v err=%v", got, ok, err)
	}

	// Overwrite is last-writer-wins.
	if err := s.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, "k")
	if string(got) != "v2" {
		t.Fatalf("overwrite got %q", got)
	}
}

func TestSQLiteStoreExpiryAndSweep(t *testing.T) {
	s, err := NewSQLiteStore(t.TempDir() + "/cache.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	_ = s.Set(ctx, "short", []byte("1"), time.Minute)
	_ = s.Set(ctx, "long", []byte("2"), time.Hour)

	s.now = func() time.Time { return now.Add(10 * time.Minute) }
	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Fatal("expired row must miss")
	}
	n, err := s.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 0 {
		// "short" was already deleted by the read above.
		t.Fatalf("expected 0 swept, got %d", n)
	}
	if _, ok, _ := s.Get(ctx, "long"); !ok {
		t.Fatal("unexpired row must survive sweep")
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("store down") }
func (failingStore) Close() error                         { return nil }

func TestTieredPromotesSharedHits(t *testing.T) {
	fast := NewMemoryStoreInterval(0)
	shared := NewMemoryStoreInterval(0)
	tiered := NewTiered(fast, shared)
	defer tiered.Close()
	ctx := context.Background()

	_ = shared.Set(ctx, "k", []byte("v"), time.Hour)
	got, ok, err := tiered.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("tiered get: %q ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := fast.Get(ctx, "k"); !ok {
		t.Fatal("shared hit must be promoted into the fast tier")
	}
}

func TestTieredSurvivesSharedFailure(t *testing.T) {
	tiered := NewTiered(NewMemoryStoreInterval(0), failingStore{})
	defer tiered.Close()
	ctx := context.Background()

	if err := tiered.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set must not fail when only the shared tier is down: %v", err)
	}
	got, ok, err := tiered.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get: %q ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := tiered.Get(ctx, "only-shared"); ok {
		t.Fatal("failing shared tier must read as a miss")
	}
}

func TestTieredWithoutSharedTier(t *testing.T) {
	tiered := NewTiered(NewMemoryStoreInterval(0), nil)
	defer tiered.Close()
	ctx := context.Background()

	_ = tiered.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok, _ := tiered.Get(ctx, "k"); !ok {
		t.Fatal("fast-only tiered store must serve hits")
	}
}
