package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshveg/basket-agent/config"
	"github.com/freshveg/basket-agent/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type redisKV struct {
	client *redis.Client
}

// NewRedisKV connects to Redis. Used by the dev/emulator profile where
// the device store is a shared Redis instead of a local file.
func NewRedisKV(cfg *config.RedisConfig) (KV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis store connected", map[string]interface{}{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})
	return &redisKV{client: client}, nil
}

func (s *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *redisKV) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisKV) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisKV) Close() error {
	return s.client.Close()
}
