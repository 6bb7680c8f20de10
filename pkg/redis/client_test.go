package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := NewFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)

	for i, want := range []bool{true, true, false} {
		allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Minute)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if allowed != want || count != int64(i+1) {
			t.Fatalf("call %d: allowed=%v count=%d", i, allowed, count)
		}
	}
	if ttl := srv.TTL("sf:rate_limit:test-scope"); ttl != time.Minute {
		t.Fatalf("expected window ttl 1m, got %v", ttl)
	}

	srv.FastForward(time.Minute + time.Second)
	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Minute)
	if err != nil || !allowed || count != 1 {
		t.Fatalf("expected fresh window, allowed=%v count=%d err=%v", allowed, count, err)
	}
}

func TestClientAgainstMiniredis(t *testing.T) {
	client, srv := newTestClient(t)

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := client.CartKey("session-1")
	if err := client.Set(ctx, key, []byte(`{"items":[]}`), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, err := client.GetBytes(ctx, key)
	if err != nil {
		t.Fatalf("get bytes: %v", err)
	}
	if string(raw) != `{"items":[]}` {
		t.Fatalf("unexpected value %s", raw)
	}
	if ttl := srv.TTL(key); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	ok, err := client.SetNX(ctx, key, "other", time.Minute)
	if err != nil || ok {
		t.Fatalf("SetNX should not overwrite, ok=%v err=%v", ok, err)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, key); !IsNil(err) {
		t.Fatalf("expected nil error after delete, got %v", err)
	}
}

func TestNewRequiresAddress(t *testing.T) {
	if _, err := New(context.Background(), config.RedisConfig{}, nil); err == nil {
		t.Fatal("expected error without url or address")
	}
}

func TestOptionsFromConfigFillsDefaults(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:          "redis://localhost:6379/2",
		PoolSize:     7,
		DialTimeout:  time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	var missing *Client
	if _, _, err := missing.FixedWindowAllow(context.Background(), "s", 1, time.Second); err == nil {
		t.Fatal("expected error from nil client")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "sf:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("scope"); got != "sf:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.CartKey(" abc "); got != "sf:cart:abc" {
		t.Fatalf("unexpected cart key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "sf:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}
