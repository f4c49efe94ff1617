package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thehopecrystal/verify-properties/internal/storage"
)

var (
	_ storage.Storage  = (*RedisStorage)(nil)
	_ storage.Expiring = (*RedisStorage)(nil)
)

type RedisStorage struct {
	Client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStorage{Client: client}, nil
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		slog.Error("Failed to get key from redis", "key", key, slog.Any("err", err))
		return nil, err
	}

	return data, nil
}

// Save stores the value without expiration; this is durable state, not a cache.
func (r *RedisStorage) Save(ctx context.Context, key string, value []byte) error {
	return r.SaveWithTTL(ctx, key, value, 0)
}

// SaveWithTTL lets redis expire the key after ttl. Zero keeps it forever.
func (r *RedisStorage) SaveWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("Failed to set key in redis", "key", key, slog.Any("err", err))
		return err
	}

	slog.Debug("Successfully saved key", "key", key)

	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.Client.Del(ctx, key).Err(); err != nil {
		slog.Error("Error deleting key", "key", key, slog.Any("err", err))
		return err
	}
	return nil
}

func (r *RedisStorage) Close() error {
	return r.Client.Close()
}
