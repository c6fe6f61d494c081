// Package locks provides the per-query execution guard: at most one run may
// be in flight for a given query at a time.
package locks

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// RunLocker guards query executions. TryLock returns false, not an error,
// when the lock is already held.
type RunLocker interface {
	TryLock(ctx context.Context, queryID uuid.UUID) (bool, error)
	Unlock(ctx context.Context, queryID uuid.UUID) error
}

// Memory is a process-local RunLocker for single-node deployments and tests.
type Memory struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemory() *Memory {
	return &Memory{held: make(map[uuid.UUID]struct{})}
}

func (m *Memory) TryLock(_ context.Context, queryID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.held[queryID]; ok {
		return false, nil
	}
	m.held[queryID] = struct{}{}
	return true, nil
}

func (m *Memory) Unlock(_ context.Context, queryID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.held, queryID)
	return nil
}
