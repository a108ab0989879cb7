package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fluxo-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisTTL bounds how long an abandoned draft survives in redis.
const DefaultRedisTTL = 7 * 24 * time.Hour

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores drafts as plain string values; a ttl <= 0 uses DefaultRedisTTL.
func NewRedis(client *redis.Client, ttl time.Duration) Repository {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &redisRepo{client: client, ttl: ttl}
}

func (r *redisRepo) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *redisRepo) Put(ctx context.Context, key string, payload []byte) error {
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
