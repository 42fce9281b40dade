// Package locks provides an in-process per-key lock manager.
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
)

// Ensure Manager implements the port.
var _ driven.LockManager = (*Manager)(nil)

// Manager hands out per-key exclusive locks backed by in-process
// channels. It serialises work within a single process; a deployment
// with several writers would need an adapter backed by shared storage.
type Manager struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewManager creates an empty lock manager.
func NewManager() *Manager {
	return &Manager{
		slots: make(map[string]chan struct{}),
	}
}

// Acquire takes the exclusive lock for key, waiting at most timeout.
func (m *Manager) Acquire(ctx context.Context, key string, timeout time.Duration) (driven.Lease, error) {
	slot := m.slot(key)

	// Fast path: lock is free.
	select {
	case slot <- struct{}{}:
		return &lease{slot: slot}, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case slot <- struct{}{}:
		return &lease{slot: slot}, nil
	case <-timer.C:
		return nil, domain.ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// slot returns the buffered channel guarding key, creating it on first
// use. A value in the channel means the lock is held.
func (m *Manager) slot(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		m.slots[key] = s
	}
	return s
}

// lease is a held lock. Release drains the slot exactly once, so double
// release cannot free a lock someone else has since taken.
type lease struct {
	slot chan struct{}
	once sync.Once
}

// Release returns the lock to the manager.
func (l *lease) Release() {
	l.once.Do(func() {
		<-l.slot
	})
}
