package authclient

import (
	"context"
	"sync"
)

var _ Persister = &MemoryPersister{}

// MemoryPersister keeps the session in process memory only
type MemoryPersister struct {
	mu      sync.Mutex
	session *Session
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (m *MemoryPersister) Load(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, nil
	}
	s := m.session.clone()
	return &s, nil
}

func (m *MemoryPersister) Save(ctx context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := session.clone()
	m.session = &s
	return nil
}

func (m *MemoryPersister) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	return nil
}
