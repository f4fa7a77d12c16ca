package kvstore

import (
	"context"
	"sync"
)

// MemoryStore keeps keys in memory. Failures can be injected for tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
	putErr error
	puts   int
	closed bool
}

// NewMemory constructs an empty memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value for key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Put stores a copy of value.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = append([]byte(nil), value...)
	s.puts++
	return nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// FailGets makes every Get return err until cleared with nil.
func (s *MemoryStore) FailGets(err error) {
	s.mu.Lock()
	s.getErr = err
	s.mu.Unlock()
}

// FailPuts makes every Put return err until cleared with nil.
func (s *MemoryStore) FailPuts(err error) {
	s.mu.Lock()
	s.putErr = err
	s.mu.Unlock()
}

// Puts reports the number of successful writes.
func (s *MemoryStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}
