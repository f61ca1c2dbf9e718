package locker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// Memory is an in-process Locker for single-instance deployments and tests.
type Memory struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
	now   func() time.Time
}

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{locks: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) TryLock(_ context.Context, key string, ttl time.Duration) (bool, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.locks[key]; ok && now.Before(e.expires) {
		return false, "", nil
	}
	token := uuid.NewString()
	m.locks[key] = memoryEntry{token: token, expires: now.Add(ttl)}
	return true, token, nil
}

func (m *Memory) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.locks[key]
	if !ok {
		return nil
	}
	if e.token != token {
		return ErrNotOwner
	}
	delete(m.locks, key)
	return nil
}
