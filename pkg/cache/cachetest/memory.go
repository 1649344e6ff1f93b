// Package cachetest provides an in-process cache.Cache for tests.
package cachetest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront/pkg/cache"
)

// Memory stores JSON encoded values in a map and keeps per-key generations
// the same way the redis cache does. Like a network client it fails calls made
// with a done context. Expirations are ignored.
type Memory struct {
	mu          sync.Mutex
	items       map[string][]byte
	generations map[string]int64
	gets        int
	failGet     error
}

var _ cache.Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		items:       make(map[string][]byte),
		generations: make(map[string]int64),
	}
}

// FailGets makes every later Get return err; nil restores normal reads.
func (m *Memory) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGet = err
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

func (m *Memory) Get(ctx context.Context, key string, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet != nil {
		return m.failGet
	}
	data, ok := m.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	return m.DeleteMultiple(ctx, []string{key})
}

func (m *Memory) DeleteMultiple(ctx context.Context, keys []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.generations[k]++
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Generation(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[key], nil
}

func (m *Memory) SetIfGeneration(ctx context.Context, key string, value interface{}, _ time.Duration, gen int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generations[key] != gen {
		return false, nil
	}
	m.items[key] = data
	return true, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Has reports whether key currently holds a value.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Gets counts Get calls that reached the cache.
func (m *Memory) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}
