package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "folio:"

// Redis is a Service shared between processes. Each tag is a set holding the
// keys stored under it.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to addr and checks the server answers.
func DialRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedis(client), nil
}

func (r *Redis) Set(ctx context.Context, key string, data []byte, tags []string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, entryKey(key), data, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagKey(tag), key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		keys, err := r.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return fmt.Errorf("redis members of %s: %w", tag, err)
		}
		toDelete := make([]string, 0, len(keys)+1)
		for _, key := range keys {
			toDelete = append(toDelete, entryKey(key))
		}
		toDelete = append(toDelete, tagKey(tag))
		if err := r.client.Del(ctx, toDelete...).Err(); err != nil {
			return fmt.Errorf("redis invalidate %s: %w", tag, err)
		}
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func entryKey(key string) string { return redisPrefix + "key:" + key }

func tagKey(tag string) string { return redisPrefix + "tag:" + tag }
