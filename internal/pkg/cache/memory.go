package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// memoryCache is the process-local Cache used when no Redis address is
// configured, and in tests.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]entry
	serviceName string
	now         func() time.Time
}

func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{
		entries:     make(map[string]entry),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.newEntry(value, ttl)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && !e.expired(m.now()) {
		return false, nil
	}
	m.entries[key] = m.newEntry(value, ttl)
	return true, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}

// newEntry formats value the way Redis would store it. A ttl of zero never expires.
func (m *memoryCache) newEntry(value interface{}, ttl time.Duration) entry {
	e := entry{value: fmt.Sprint(value)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}
