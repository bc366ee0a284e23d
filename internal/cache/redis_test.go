package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *RedisCache[decimal.Decimal]) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCache[decimal.Decimal](client, "saldo:summary:", time.Minute)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, c := newMiniredisClient(t)

	if _, ok := c.Get(ctx, "s1"); ok {
		t.Fatalf("expected miss")
	}
	c.Set(ctx, "s1", decimal.RequireFromString("-12.5"))
	if !mr.Exists("saldo:summary:s1") {
		t.Fatalf("expected prefixed key in redis, keys=%v", mr.Keys())
	}
	got, ok := c.Get(ctx, "s1")
	if !ok || !got.Equal(decimal.RequireFromString("-12.5")) {
		t.Fatalf("expected -12.5, got %s (ok=%v)", got, ok)
	}

	c.Delete(ctx, "s1")
	if _, ok := c.Get(ctx, "s1"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestRedisCacheTTLAndCorruptEntries(t *testing.T) {
	ctx := context.Background()
	mr, c := newMiniredisClient(t)

	c.Set(ctx, "s1", decimal.NewFromInt(1))
	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, "s1"); ok {
		t.Fatalf("expected entry to expire")
	}

	if err := mr.Set("saldo:summary:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok := c.Get(ctx, "bad"); ok {
		t.Fatalf("corrupt entry must read as a miss")
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisClient(context.Background(), addr, "", 0); err == nil {
		t.Fatalf("expected dial error for closed server")
	}
}
