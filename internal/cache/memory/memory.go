package memory

import (
	"context"
	"sync"
	"time"

	"github.com/golook/golook/internal/cache"
)

type entry struct {
	value    []byte
	deadline time.Time
}

// Memory is an in-process cache backend. It is the default backend when no
// Redis is configured and doubles as the backend used in tests.
type Memory struct {
	mtx     sync.Mutex
	entries map[string]entry
}

func New() *Memory {
	return &Memory{
		entries: map[string]entry{},
	}
}

func (memory *Memory) Get(_ context.Context, key string) ([]byte, error) {
	memory.mtx.Lock()
	defer memory.mtx.Unlock()

	entry, ok := memory.entries[key]
	if !ok {
		return nil, cache.ErrNotFound
	}

	// Expired entries are evicted lazily, on access
	if !entry.deadline.IsZero() && time.Now().After(entry.deadline) {
		delete(memory.entries, key)

		return nil, cache.ErrNotFound
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)

	return value, nil
}

func (memory *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	memory.mtx.Lock()
	defer memory.mtx.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	var deadline time.Time

	if ttl != 0 {
		deadline = time.Now().Add(ttl)
	}

	memory.entries[key] = entry{
		value:    stored,
		deadline: deadline,
	}

	return nil
}

func (memory *Memory) Delete(_ context.Context, key string) error {
	memory.mtx.Lock()
	defer memory.mtx.Unlock()

	delete(memory.entries, key)

	return nil
}

// Len returns the number of entries currently held, expired or not.
func (memory *Memory) Len() int {
	memory.mtx.Lock()
	defer memory.mtx.Unlock()

	return len(memory.entries)
}
