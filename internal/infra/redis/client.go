package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wlp-app/wlp/internal/core/domain"
)

// Client wraps Redis operations for the weather snapshot cache.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
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

func snapshotKey(lat, lon float64, day string) string {
	return fmt.Sprintf("weather:%.4f:%.4f:%s", lat, lon, day)
}

// GetSnapshot returns the cached snapshot for a city and day, if present.
func (c *Client) GetSnapshot(
	ctx context.Context,
	city domain.City,
	day string,
) (*domain.WeatherSnapshot, bool, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(city.Lat, city.Lon, day)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot failed: %w", err)
	}

	var snap domain.WeatherSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, fmt.Errorf("invalid cached snapshot: %w", err)
	}
	return &snap, true, nil
}

// SetSnapshot stores a snapshot under the city/day key with the given TTL.
func (c *Client) SetSnapshot(
	ctx context.Context,
	snap *domain.WeatherSnapshot,
	day string,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}
	key := snapshotKey(snap.City.Lat, snap.City.Lon, day)
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot failed: %w", err)
	}
	return nil
}
