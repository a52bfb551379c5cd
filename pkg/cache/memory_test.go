package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheStringRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	var got string
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "v" {
		t.Fatalf("Get() = %q, want %q", got, "v")
	}
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	type bundle struct {
		Symbol string
		Score  float64
	}
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", &bundle{Symbol: "BTC", Score: 0.42}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	var got bundle
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Symbol != "BTC" || got.Score != 0.42 {
		t.Fatalf("Get() = %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	var got string
	if err := c.Get(context.Background(), "absent", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	var got string
	if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}
