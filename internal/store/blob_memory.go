package store

import "sync"

// MemoryBlobStore backs the store with a plain map. Used in tests and as
// a throwaway store when no data dir is configured.
type MemoryBlobStore struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{m: map[string][]byte{}}
}

func (s *MemoryBlobStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (s *MemoryBlobStore) Put(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := make([]byte, len(data))
	copy(b, data)
	s.m[key] = b
	return nil
}

func (s *MemoryBlobStore) Close() error {
	return nil
}
