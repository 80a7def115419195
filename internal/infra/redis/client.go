package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys used by the credential configuration store. The list key holds a
// JSON-encoded array of API keys; the legacy key holds a single key from
// older deployments and is only consulted when the list is empty.
const (
	keyList   = "scribe:api_keys"
	keyLegacy = "scribe:api_key"
)

// Client wraps Redis operations for the credential configuration store.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"      env:"REDIS_URL"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// KeyList returns the JSON-encoded API key list. A missing key is not an
// error; it is reported as an empty list.
func (c *Client) KeyList(ctx context.Context) ([]string, error) {
	val, err := c.rdb.Get(ctx, keyList).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get key list: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(val), &keys); err != nil {
		return nil, fmt.Errorf("invalid key list format: %w", err)
	}
	return keys, nil
}

// LegacyKey returns the single-key fallback from older deployments.
func (c *Client) LegacyKey(ctx context.Context) (string, error) {
	val, err := c.rdb.Get(ctx, keyLegacy).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get legacy key: %w", err)
	}
	return val, nil
}

// SetKeyList replaces the stored API key list.
func (c *Client) SetKeyList(ctx context.Context, keys []string) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal key list: %w", err)
	}
	if err := c.rdb.Set(ctx, keyList, data, 0).Err(); err != nil {
		return fmt.Errorf("set key list: %w", err)
	}
	return nil
}
