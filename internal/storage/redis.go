package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
)

// RedisStore appends records to a Redis stream.
type RedisStore struct {
	client *redis.Client
	stream string
}

// OpenRedis connects to cfg.RedisURL and pings it.
func OpenRedis(ctx context.Context, cfg config.StorageConfig) (*RedisStore, error) {
	if cfg.RedisURL == "" {
		return nil, errors.New("redis storage requires redis_url")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisStore(client, cfg.RedisStream), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, stream string) *RedisStore {
	return &RedisStore{client: client, stream: stream}
}

// Insert XADDs rec as a single entry.
func (s *RedisStore) Insert(ctx context.Context, rec domain.EnrichedRecord) error {
	data, err := json.Marshal(toRow(rec))
	if err != nil {
		return persistErr("redis", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"id": rec.ID, "data": string(data)},
	}).Err()
	return persistErr("redis", err)
}

func (s *RedisStore) Close() error { return s.client.Close() }
