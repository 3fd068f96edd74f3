// Package cache is a thin JSON cache over Redis.
//
// The cache is best-effort: when Redis is unreachable every operation
// degrades to a no-op miss so the application keeps serving from the
// database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/bazaar/config"
)

// Store wraps a redis client. A nil *Store or a Store whose connection
// failed behaves as an always-miss cache.
type Store struct {
	rdb *redis.Client
	ctx context.Context
}

// Connect initialises the Redis client and verifies it with a ping.
func Connect() (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &Store{rdb: rdb, ctx: context.Background()}, nil
}

// Client exposes the underlying redis client so the queue's redis driver
// can share the connection.
func (s *Store) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.rdb
}

// Get retrieves a cached value by key and unmarshals it into dest.
// Returns true on a hit, false on miss or any error.
func (s *Store) Get(key string, dest interface{}) bool {
	if s == nil || s.rdb == nil {
		return false
	}

	val, err := s.rdb.Get(s.ctx, key).Result()
	if err != nil {
		return false
	}

	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores value under key for the given TTL.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.rdb.Set(s.ctx, key, data, ttl).Err()
}

// Forget removes key from the cache.
func (s *Store) Forget(key string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(s.ctx, key).Err()
}
