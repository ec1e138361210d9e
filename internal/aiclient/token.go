package aiclient

import "sync"

// TokenSource supplies the bearer credential for calls to the generation
// service and can be cleared when the service rejects it. Injecting it keeps
// credential storage out of the client itself; the host decides where tokens
// live.
type TokenSource interface {
	Token() string
	Clear()
}

// MemoryTokenSource is a concurrency-safe in-memory TokenSource.
type MemoryTokenSource struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenSource(token string) *MemoryTokenSource {
	return &MemoryTokenSource{token: token}
}

func (s *MemoryTokenSource) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenSource) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
