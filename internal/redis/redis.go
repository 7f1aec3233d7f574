// Package redis stores conversation state in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Jayphen/taskvoice/internal/session"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionKeyPrefix is the Redis key prefix for conversation state.
	SessionKeyPrefix = "taskvoice:session:"
	// DefaultRedisURL is the default Redis connection URL.
	DefaultRedisURL = "redis://localhost:6379"
)

// Client wraps a Redis client and implements session.Store.
type Client struct {
	rdb *redis.Client
}

var _ session.Store = (*Client)(nil)

// NewClient connects to url. An empty url falls back to REDIS_URL and then
// DefaultRedisURL.
func NewClient(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		url = os.Getenv("REDIS_URL")
	}
	if url == "" {
		url = DefaultRedisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Load returns the stored state for key.
func (c *Client) Load(ctx context.Context, key string) (*session.State, error) {
	data, err := c.rdb.Get(ctx, SessionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var st session.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("corrupt session state %s: %w", key, err)
	}
	return &st, nil
}

// Save stores st with the given expiry. A ttl of zero never expires.
func (c *Client) Save(ctx context.Context, st *session.State, ttl time.Duration) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, SessionKeyPrefix+st.Key, data, ttl).Err()
}

// Delete removes the state for key.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, SessionKeyPrefix+key).Err()
}

// Keys returns the keys of all stored conversations, without the prefix.
func (c *Client) Keys(ctx context.Context) ([]string, error) {
	keys, err := c.scanKeys(ctx, SessionKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = k[len(SessionKeyPrefix):]
	}
	return keys, nil
}

// scanKeys scans for all keys matching a pattern.
func (c *Client) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		var batch []string
		var err error
		batch, cursor, err = c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return keys, err
		}

		keys = append(keys, batch...)

		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// IsAvailable checks if Redis is reachable at url.
func IsAvailable(ctx context.Context, url string) bool {
	client, err := NewClient(ctx, url)
	if err != nil {
		return false
	}
	defer client.Close()
	return true
}
