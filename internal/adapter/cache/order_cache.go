package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/go-redis/redis/v8"
)

const orderKeyPrefix = "order:"

// RedisOrderCache keeps short-lived ProductionOrder snapshots in Redis. It
// is best-effort infrastructure: every failure is returned to the caller,
// which falls through to postgres.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOrderCache(client *redis.Client, ttl time.Duration) ports.OrderCache {
	return &RedisOrderCache{client: client, ttl: ttl}
}

func (c *RedisOrderCache) Get(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	payload, err := c.client.Get(ctx, orderKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var order domain.ProductionOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &order, nil
}

func (c *RedisOrderCache) Set(ctx context.Context, order *domain.ProductionOrder) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, orderKeyPrefix+order.ID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisOrderCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, orderKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
