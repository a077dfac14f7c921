package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps carts as JSON values with a sliding expiry. The client is
// shared and safe for concurrent use; individual key operations are atomic
// at the store level.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get returns nil without error when the cart does not exist.
func (s *RedisStore) Get(ctx context.Context, cartID string) (*Cart, error) {
	data, err := s.client.Get(ctx, cartID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", cartID, err)
	}

	c := &Cart{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", cartID, err)
	}

	return c, nil
}

// Upsert writes the cart and refreshes its expiry window, then reads the
// stored value back.
func (s *RedisStore) Upsert(ctx context.Context, c *Cart) (*Cart, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart %s: %w", c.ID, err)
	}

	if err := s.client.Set(ctx, c.ID, data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("set cart %s: %w", c.ID, err)
	}

	return s.Get(ctx, c.ID)
}

// Delete reports whether a cart was actually removed; deleting an absent
// cart is a no-op.
func (s *RedisStore) Delete(ctx context.Context, cartID string) (bool, error) {
	deleted, err := s.client.Del(ctx, cartID).Result()
	if err != nil {
		return false, fmt.Errorf("delete cart %s: %w", cartID, err)
	}

	return deleted > 0, nil
}
