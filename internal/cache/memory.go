package cache

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process cache for single-instance deployments and tests.
// Capacity is bounded by the LRU; expired entries read as absent and are
// evicted on access. mu makes the expiry check and the eviction one step, so
// a concurrent Set of a fresh value is never dropped.
type Memory struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, memEntry]
	ttl time.Duration
	now func() time.Time
}

func NewMemory(size int, ttl time.Duration) (*Memory, error) {
	c, err := simplelru.NewLRU[string, memEntry](size, nil)
	if err != nil {
		return nil, err
	}
	return &Memory{
		lru: c,
		ttl: effectiveTTL(ttl, DefaultTTL),
		now: time.Now,
	}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		m.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lru.Add(key, memEntry{
		value:     bytes.Clone(value),
		expiresAt: m.now().Add(effectiveTTL(ttl, m.ttl)),
	})
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range m.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.lru.Remove(k)
		}
	}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lru.Purge()
	return nil
}
