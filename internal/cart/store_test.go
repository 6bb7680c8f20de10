package cart

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	return newLoggedRedisStore(t, ttl, io.Discard)
}

func newLoggedRedisStore(t *testing.T, ttl time.Duration, out io.Writer) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, ttl, logger.New(logger.Options{ServiceName: "test", Output: out}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, srv
}

func TestRedisStoreMissingKeyIsEmpty(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)

	c, err := store.Load(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", c)
	}
}

func TestRedisStoreSaveSlidesTTL(t *testing.T) {
	store, srv := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	c := New()
	c.AddItem(ref(uuid.New(), "7"), 1, Variant{})
	if err := store.Save(ctx, "s1", c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := srv.TTL("sf:cart:s1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}

	srv.FastForward(30 * time.Minute)
	c.AddItem(ref(uuid.New(), "3"), 2, Variant{})
	if err := store.Save(ctx, "s1", c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := srv.TTL("sf:cart:s1"); ttl != time.Hour {
		t.Fatalf("expected ttl refreshed to 1h, got %v", ttl)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ItemCount() != 3 || !loaded.Total.Equal(c.Total) {
		t.Fatalf("unexpected loaded cart %+v", loaded)
	}
}

func TestRedisStoreSaveEmptyDeletes(t *testing.T) {
	store, srv := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	c := New()
	c.AddItem(ref(uuid.New(), "7"), 1, Variant{})
	if err := store.Save(ctx, "s2", c); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.Clear()
	if err := store.Save(ctx, "s2", c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if srv.Exists("sf:cart:s2") {
		t.Fatal("expected key removed for empty cart")
	}
}

func TestRedisStoreExpires(t *testing.T) {
	store, srv := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	c := New()
	c.AddItem(ref(uuid.New(), "1"), 1, Variant{})
	if err := store.Save(ctx, "s3", c); err != nil {
		t.Fatalf("save: %v", err)
	}
	srv.FastForward(2 * time.Minute)

	loaded, err := store.Load(ctx, "s3")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.IsEmpty() {
		t.Fatalf("expected expired cart to load empty, got %+v", loaded)
	}
}

func TestRedisStoreCorruptBlobLoadsEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	store, srv := newLoggedRedisStore(t, time.Hour, buf)
	ctx := context.Background()
	if err := srv.Set("sf:cart:s4", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	loaded, err := store.Load(ctx, "s4")
	if err != nil {
		t.Fatalf("corrupt blob should not fail the load: %v", err)
	}
	if !loaded.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", loaded)
	}
	if !strings.Contains(buf.String(), "cart.blob_discarded") || !strings.Contains(buf.String(), `"cart_session":"s4"`) {
		t.Fatalf("expected a warning for the discarded blob, got %s", buf.String())
	}

	c := New()
	c.AddItem(ref(uuid.New(), "4"), 1, Variant{})
	if err := store.Save(ctx, "s4", c); err != nil {
		t.Fatalf("save over corrupt blob: %v", err)
	}
	if loaded, err = store.Load(ctx, "s4"); err != nil || loaded.ItemCount() != 1 {
		t.Fatalf("expected the fresh cart back, got %+v err=%v", loaded, err)
	}
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewRedisStore(nil, time.Hour, logg); err == nil {
		t.Fatal("expected error for nil client")
	}
}
