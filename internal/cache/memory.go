package cache

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	maxBytes int64
}

// NewMemoryStore creates an in-memory store; maxBytes 0 means unlimited
func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

func (s *MemoryStore) Get(_ context.Context, collection string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.data[collection]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, true, nil
}

func (s *MemoryStore) Put(_ context.Context, collection string, payload []byte, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var used int64
	for name, p := range s.data {
		if name != collection {
			used += int64(len(p))
		}
	}
	if err := checkQuota(collection, used, int64(len(payload)), s.maxBytes); err != nil {
		return err
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.data[collection] = stored
	return nil
}

func (s *MemoryStore) Collections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}
