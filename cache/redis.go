package cache

import (
	"context"
	"errors"
	"time"

	"creatorpulse/config"

	"github.com/go-redis/redis/v8"
)

// RedisStorage implements fiber.Storage for Redis. Keys are namespaced by
// prefix so the fetch cache and the rate limiter can share one database.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: "creatorpulse:",
	}
}

// WithPrefix returns a storage sharing the same connection under another namespace.
func (r *RedisStorage) WithPrefix(prefix string) *RedisStorage {
	return &RedisStorage{client: r.client, prefix: prefix}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), r.prefix+key, val, exp).Err()
}

// Incr bumps the counter under key with INCR, so every replica sees one sequence.
func (r *RedisStorage) Incr(key string) (uint64, error) {
	n, err := r.client.Incr(context.Background(), r.prefix+key).Result()
	return uint64(n), err
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), r.prefix+key).Err()
}

// Reset removes every key under the prefix. It never flushes the whole database.
func (r *RedisStorage) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
