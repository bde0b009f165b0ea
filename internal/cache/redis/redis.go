package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golook/golook/internal/cache"
	redispkg "github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redispkg.Client
}

// New connects to the Redis instance described by url
// (e.g. redis://localhost:6379/0).
func New(url string) (*Redis, error) {
	options, err := redispkg.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL %q: %w", url, err)
	}

	return &Redis{
		client: redispkg.NewClient(options),
	}, nil
}

func (redis *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := redis.client.Get(ctx, key).Bytes()
	if err != nil {
		// Convert the error for consumer's convenience
		if errors.Is(err, redispkg.Nil) {
			return nil, cache.ErrNotFound
		}

		return nil, fmt.Errorf("failed to retrieve cache entry %q: %w", key, err)
	}

	return value, nil
}

func (redis *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := redis.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry %q: %w", key, err)
	}

	return nil
}

func (redis *Redis) Delete(ctx context.Context, key string) error {
	if err := redis.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry %q: %w", key, err)
	}

	return nil
}

func (redis *Redis) Close() error {
	return redis.client.Close()
}
