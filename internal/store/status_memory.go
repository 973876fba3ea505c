package store

import (
    "context"
    "sync"
)

// MemoryStatus is the fallback status store used when no Redis is
// configured. Records live for the process lifetime only.
type MemoryStatus struct {
    mu sync.RWMutex
    m  map[string]Status
}

func NewMemoryStatus() *MemoryStatus {
    return &MemoryStatus{m: make(map[string]Status)}
}

func (s *MemoryStatus) Set(_ context.Context, requestID string, st Status) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.m[requestID] = st
    return nil
}

func (s *MemoryStatus) Get(_ context.Context, requestID string) (Status, bool, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    st, ok := s.m[requestID]
    return st, ok, nil
}

func (s *MemoryStatus) Close() error { return nil }
