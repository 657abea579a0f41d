package kv

import (
	"fmt"
	"strconv"
	"sync"
)

// Store is the key-value surface the wallet ledger persists through. Keys are
// opaque strings scoped per player and per (player, hand) pair. The shape
// matches a Redis string store so a networked client can drop in behind it.
type Store interface {
	// Get returns the value for key, or ok=false if the key is unset.
	Get(key string) (value string, ok bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string)

	// IncrBy adds delta to the integer stored at key (missing keys count as
	// zero) and returns the new value. Fails if the existing value is not an
	// integer.
	IncrBy(key string, delta int64) (int64, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string)
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *MemoryStore) IncrBy(key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if raw, ok := s.data[key]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("kv: value at %q is not an integer: %w", key, err)
		}
		current = parsed
	}

	current += delta
	s.data[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
