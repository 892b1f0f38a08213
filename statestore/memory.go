package statestore

import (
	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process Store backed by a go-cache instance. Entries do
// not expire; it exists for tests and for single-process deployments that
// do not need the state to survive a restart.
type Memory struct {
	cache *gocache.Cache
}

func NewMemory() *Memory {
	return &Memory{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.([]byte)
	return raw, ok
}

func (m *Memory) Set(key string, value []byte) error {
	copied := make([]byte, len(value))
	copy(copied, value)
	m.cache.Set(key, copied, gocache.NoExpiration)
	return nil
}

func (m *Memory) Clear(key string) {
	m.cache.Delete(key)
}
