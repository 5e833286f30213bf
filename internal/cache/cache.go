// Package cache stores generated summaries keyed by industry and time period.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long a summary stays fresh.
const DefaultTTL = 7 * 24 * time.Hour

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

// Cache is a string cache with per-backend expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Key returns the cache key for an industry and time period slug.
func Key(industry, timePeriod string) string {
	return industry + ":" + timePeriod
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string
	TTL      time.Duration
	Size     int    // memory: maximum entries
	File     string // file: path of the JSON snapshot
	RedisURL string // redis: redis://host:port/db
}

// New builds the backend named by cfg.Backend.
func New(cfg Config) (Cache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(cfg.Size, ttl), nil
	case BackendFile:
		if cfg.File == "" {
			return nil, fmt.Errorf("cache file path is required for the file backend")
		}
		return LoadFile(cfg.File, ttl)
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis URL is required for the redis backend")
		}
		return NewRedisFromURL(cfg.RedisURL, ttl)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
