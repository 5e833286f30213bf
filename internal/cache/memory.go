package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds the memory backend when no size is configured.
const DefaultSize = 256

// Memory is a bounded in-process cache; the least recently used entry is
// evicted when full and entries expire after the TTL.
type Memory struct {
	lru *expirable.LRU[string, string]
}

// NewMemory returns a memory cache holding at most size entries.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.lru.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.lru.Add(key, value)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
