package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const defaultTTL = 30 * 24 * time.Hour

// Store persists carts keyed by cart session id.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type blobStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStore keeps each cart as one JSON blob. Every save pushes the expiry
// forward so active carts never lapse. A blob that no longer decodes loads
// as an empty cart and is overwritten by the next save.
type RedisStore struct {
	client blobStore
	ttl    time.Duration
	logg   *logger.Logger
}

// NewRedisStore builds a store over the redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, logg: logg}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	data, err := s.client.GetBytes(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	c, err := Decode(data)
	if err != nil {
		entry := s.logg.WithFields(ctx, map[string]any{"cart_session": sessionID, "error": err.Error()})
		s.logg.Warn(entry, "cart.blob_discarded")
		return New(), nil
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if c == nil || c.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), data, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
