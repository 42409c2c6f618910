package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type point struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestMemory(t *testing.T, opts ...MemoryOption) (*MemoryCache, *fakeClock) {
	t.Helper()
	mc := NewMemoryCache(opts...)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc.now = clock.now
	t.Cleanup(func() { _ = mc.Close() })
	return mc, clock
}

func TestMemoryCache_SetGet(t *testing.T) {
	mc, _ := newTestMemory(t)
	ctx := context.Background()

	if err := mc.Set(ctx, "a", point{"AAPL", 190.5}, time.Minute); err != nil {
		t.Fatal(err)
	}
	var got point
	if err := mc.Get(ctx, "a", &got); err != nil {
		t.Fatal(err)
	}
	if got.Symbol != "AAPL" || got.Close != 190.5 {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc, clock := newTestMemory(t)
	ctx := context.Background()

	_ = mc.Set(ctx, "a", point{"MSFT", 1}, 5*time.Minute)
	clock.t = clock.t.Add(6 * time.Minute)

	var got point
	if err := mc.Get(ctx, "a", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after expiry, got %v", err)
	}
	if mc.Len() != 0 {
		t.Error("expired entry should be removed on read")
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	mc, clock := newTestMemory(t, WithMemoryMaxSize(2))
	ctx := context.Background()
	var p point

	_ = mc.Set(ctx, "a", point{"A", 1}, time.Hour)
	clock.t = clock.t.Add(time.Second)
	_ = mc.Set(ctx, "b", point{"B", 2}, time.Hour)
	clock.t = clock.t.Add(time.Second)
	_ = mc.Get(ctx, "a", &p)
	clock.t = clock.t.Add(time.Second)
	_ = mc.Set(ctx, "c", point{"C", 3}, time.Hour)

	if err := mc.Get(ctx, "b", &p); !errors.Is(err, ErrCacheMiss) {
		t.Error("expected b to be evicted")
	}
	if err := mc.Get(ctx, "a", &p); err != nil {
		t.Errorf("a should survive: %v", err)
	}
	if err := mc.Get(ctx, "c", &p); err != nil {
		t.Errorf("c should be present: %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	mc, _ := newTestMemory(t)
	ctx := context.Background()
	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Delete(ctx, "a", "missing")
	var v int
	if err := mc.Get(ctx, "a", &v); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss, got %v", err)
	}
}

func TestLayeredCache_PromotesFromL2(t *testing.T) {
	l2, _ := newTestMemory(t)
	lc := NewLayeredCache(l2, time.Minute)
	t.Cleanup(func() { _ = lc.l1.Close() })
	ctx := context.Background()

	_ = l2.Set(ctx, "k", point{"NVDA", 10}, time.Hour)

	var got point
	if err := lc.Get(ctx, "k", &got); err != nil {
		t.Fatal(err)
	}
	if got.Symbol != "NVDA" {
		t.Errorf("got %+v", got)
	}
	if lc.l1.Len() != 1 {
		t.Error("entry should be promoted into memory")
	}
}

func TestLayeredCache_WriteThrough(t *testing.T) {
	l2, _ := newTestMemory(t)
	lc := NewLayeredCache(l2, time.Minute)
	t.Cleanup(func() { _ = lc.l1.Close() })
	ctx := context.Background()

	if err := lc.Set(ctx, "k", point{"TSLA", 3}, time.Hour); err != nil {
		t.Fatal(err)
	}
	var got point
	if err := l2.Get(ctx, "k", &got); err != nil {
		t.Errorf("l2 missing written value: %v", err)
	}
	_ = lc.Delete(ctx, "k")
	if err := lc.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestSeriesKey(t *testing.T) {
	if got := SeriesKey("yahoo", "aapl", "1y", "1d"); got != "series:yahoo:AAPL:1y:1d" {
		t.Errorf("got %s", got)
	}
}

func TestMemoryCache_SweeperRemovesExpired(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(10 * time.Millisecond))
	defer mc.Close()

	_ = mc.Set(context.Background(), "a", point{"NVDA", 1}, 20*time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for mc.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expired entry was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryCache_NonPositiveCleanupKeepsDefault(t *testing.T) {
	cfg := &MemoryConfig{CleanupInterval: 5 * time.Minute}
	WithMemoryCleanup(0)(cfg)
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("interval = %v, want default", cfg.CleanupInterval)
	}
	mc := NewMemoryCache(WithMemoryCleanup(-time.Second))
	_ = mc.Close()
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
	}{
		{"stocklens", "stocklens:series:x"},
		{"stocklens:", "stocklens:series:x"},
		{"", "series:x"},
	}
	for _, tc := range cases {
		c := NewRedisCacheFromClient(nil, tc.prefix)
		if got := c.wrapKey("series:x"); got != tc.want {
			t.Errorf("prefix %q: got %q, want %q", tc.prefix, got, tc.want)
		}
	}
}
