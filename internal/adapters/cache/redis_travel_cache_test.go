package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisTravelTimeCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisTravelTimeCache(client, ttl), mr
}

func TestRedisTravelCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	put := map[string]float64{
		"52.37000,4.89000": 14.5,
		"0.00000,0.00000":  math.Inf(1),
	}
	if err := c.PutMany(ctx, "driving-car", "o", put); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := c.GetMany(ctx, "driving-car", "o", []string{
		"52.37000,4.89000",
		"0.00000,0.00000",
		"missing",
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if got["52.37000,4.89000"] != 14.5 {
		t.Fatalf("minutes = %v, want 14.5", got["52.37000,4.89000"])
	}
	if !math.IsInf(got["0.00000,0.00000"], 1) {
		t.Fatalf("unreachable pair came back as %v, want +Inf", got["0.00000,0.00000"])
	}
}

func TestRedisTravelCacheEntriesExpire(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	if err := c.PutMany(ctx, "driving-car", "o", map[string]float64{"d": 10}); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	got, err := c.GetMany(ctx, "driving-car", "o", []string{"d"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected the entry to expire, got %v", got)
	}
}

func TestRedisTravelCachePurgeIsNoop(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Hour)

	n, err := c.PurgeOlderThan(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 0 {
		t.Fatalf("redis purge reported %d rows", n)
	}
}

func TestRedisTravelCacheValidation(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	if _, err := c.GetMany(ctx, "", "o", []string{"d"}); err == nil {
		t.Fatal("expected error for empty profile")
	}
	if err := c.PutMany(ctx, "driving-car", "o", map[string]float64{"": 1}); err == nil {
		t.Fatal("expected error for empty destination key")
	}
}
