package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps counters in a process-local map. Counters reset on
// restart and are not shared between instances; multi-instance deployments
// should use RedisStore instead.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	ops      uint64
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// pruneEvery spaces out the opportunistic sweeps done inside Incr.
const pruneEvery = 4096

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops++
	if s.ops%pruneEvery == 0 {
		s.pruneLocked()
	}

	now := s.now()
	c, ok := s.counters[key]
	if !ok || now.After(c.resetAt) {
		c = &counter{resetAt: now.Add(window)}
		s.counters[key] = c
	}
	c.count++
	return c.count, nil
}

// Prune drops expired counters so long-running processes do not accumulate
// one entry per client forever.
func (s *MemoryStore) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
}

func (s *MemoryStore) pruneLocked() {
	now := s.now()
	for key, c := range s.counters {
		if now.After(c.resetAt) {
			delete(s.counters, key)
		}
	}
}
