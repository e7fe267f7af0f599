package guild

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisKey is where the document lives when no key is configured
const DefaultRedisKey = "promile:store"

// RedisConfig holds configuration for the Redis repository
type RedisConfig struct {
	// Redis client
	RedisClient *redis.Client

	// Key holding the document
	Key string

	// Logger receives load and recovery events
	Logger zerolog.Logger
}

type redisBackend struct {
	client *redis.Client
	key    string
}

// NewRedis creates a repository that keeps the document under one Redis key
func NewRedis(cfg *RedisConfig) (*DocumentRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = DefaultRedisKey
	}

	return newDocumentRepository(&redisBackend{client: cfg.RedisClient, key: key}, cfg.Logger), nil
}

func (b *redisBackend) name() string {
	return "redis"
}

func (b *redisBackend) read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return data, nil
}

// write relies on SET replacing the value atomically
func (b *redisBackend) write(ctx context.Context, data []byte) error {
	return b.client.Set(ctx, b.key, data, 0).Err()
}

func (b *redisBackend) quarantine(ctx context.Context, data []byte) error {
	return b.client.Set(ctx, b.key+":corrupt", data, 0).Err()
}

// close leaves the client open; it is owned by the caller
func (b *redisBackend) close() error {
	return nil
}
