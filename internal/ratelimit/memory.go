package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory fixed windows
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]*window
	clean *time.Ticker
}

type window struct {
	count     int
	resetTime time.Time
}

// NewMemoryStore creates a new memory-based store
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		data:  make(map[string]*window),
		clean: time.NewTicker(cleanupInterval),
	}

	go store.cleanup()
	return store
}

func (s *MemoryStore) cleanup() {
	for range s.clean.C {
		s.mu.Lock()
		now := time.Now()
		for key, w := range s.data {
			if now.After(w.resetTime) {
				delete(s.data, key)
			}
		}
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Increment(ctx context.Context, key string, windowSize time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, exists := s.data[key]
	if !exists || now.After(w.resetTime) {
		w = &window{count: 0, resetTime: now.Add(windowSize)}
		s.data[key] = w
	}

	w.count++
	return w.count, w.resetTime, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error {
	s.clean.Stop()
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}
