package storage

import (
	"context"
	"sync"
)

// MemorySlot keeps the slot in process memory. Used by tests and by
// runs that don't need the contents to survive a restart.
type MemorySlot struct {
	mu   sync.RWMutex
	data []byte
	set  bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(_ context.Context) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return nil, false, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, true, nil
}

func (s *MemorySlot) Write(_ context.Context, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.mu.Lock()
	s.data = cp
	s.set = true
	s.mu.Unlock()
	return nil
}
