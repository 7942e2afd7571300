package store

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu        sync.RWMutex
	namespace string
	records   map[string]Record
	now       clock
}

var _ Connector = (*MemoryStore)(nil)

func NewMemoryStore(namespace string) *MemoryStore {
	return &MemoryStore{
		namespace: namespace,
		records:   make(map[string]Record),
		now:       utcNow,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Fetch(ctx context.Context, key string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[s.namespace+":"+key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	id := s.namespace + ":" + key

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		rec = Record{Key: key, Created: now}
	}
	rec.Value = value
	rec.LastModified = now
	s.records[id] = rec
	return nil
}
