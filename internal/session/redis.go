package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-client/internal/models"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps the session record under a fixed key in Redis. Useful
// when several headless client instances share one identity.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore connects to Redis and returns a session store bound to
// the fixed record key.
func NewRedisStore(addr, password string, db int, key string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, key: key}, nil
}

// Load reads the persisted session. A missing key means no session.
func (rs *RedisStore) Load() (*models.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := rs.rdb.Get(ctx, rs.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session record: %w", err)
	}
	return &s, nil
}

// Save writes the session record without expiry; sessions end only by
// explicit logout or credential rejection.
func (rs *RedisStore) Save(s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rs.rdb.Set(ctx, rs.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write session to redis: %w", err)
	}
	return nil
}

// Clear removes the persisted record.
func (rs *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return rs.rdb.Del(ctx, rs.key).Err()
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.rdb.Close()
}
