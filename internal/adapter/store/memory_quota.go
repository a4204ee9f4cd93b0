package store

import (
	"context"
	"sync"
	"time"

	"interview-gateway/internal/domain/entity"
)

type quotaEntry struct {
	count   int
	resetAt time.Time
}

// MemoryQuotaStore keeps quota counters in process memory behind one mutex.
// Counters are lost on restart and are not shared between instances; use RedisQuotaStore
// when more than one instance serves traffic.
type MemoryQuotaStore struct {
	mu      sync.Mutex
	entries map[string]*quotaEntry
	now     func() time.Time
}

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return NewMemoryQuotaStoreWithClock(time.Now)
}

func NewMemoryQuotaStoreWithClock(now func() time.Time) *MemoryQuotaStore {
	return &MemoryQuotaStore{
		entries: make(map[string]*quotaEntry),
		now:     now,
	}
}

func (s *MemoryQuotaStore) CheckAndConsume(_ context.Context, key string, limit int) (entity.QuotaDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &quotaEntry{resetAt: entity.StartOfNextDay(now)}
		s.entries[key] = e
	}

	if e.count >= limit {
		return entity.QuotaDecision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}
	e.count++
	return entity.QuotaDecision{Allowed: true, Remaining: limit - e.count, ResetAt: e.resetAt}, nil
}
