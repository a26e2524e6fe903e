package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

const redisConnectionTimeout = 5 * time.Second

// RedisStore keeps each document as a JSON string under "collection:key"
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the configured server and verifies it with a ping
func NewRedisStore(ctx context.Context, cfg *config.RedisConfig) (*RedisStore, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Upsert overwrites the value stored for the document
func (s *RedisStore) Upsert(ctx context.Context, collection, key string, doc *model.Project) error {
	body, err := encodeDocument(key, doc)
	if err != nil {
		return writeError(key, err)
	}

	if err := s.client.Set(ctx, RedisKey(collection, key), body, 0).Err(); err != nil {
		return writeError(key, fmt.Errorf("redis set failed: %w", err))
	}
	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// RedisKey returns the key a document is stored under
func RedisKey(collection, key string) string {
	return collection + ":" + key
}
