package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

func TestManager_AcquireAndRelease(t *testing.T) {
	m := NewManager()

	lease, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)
	require.NotNil(t, lease)

	lease.Release()

	// Lock must be free again.
	lease2, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)
	lease2.Release()
}

func TestManager_SecondAcquireTimesOut(t *testing.T) {
	m := NewManager()

	lease, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)
	defer lease.Release()

	_, err = m.Acquire(context.Background(), "notes/a.md", 20*time.Millisecond)
	assert.True(t, errors.Is(err, domain.ErrLockTimeout))
}

func TestManager_ReleaseUnblocksWaiter(t *testing.T) {
	m := NewManager()

	lease, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		l, err := m.Acquire(context.Background(), "notes/a.md", 2*time.Second)
		if err == nil {
			l.Release()
			close(acquired)
		}
	}()

	// Give the waiter time to block, then release.
	time.Sleep(20 * time.Millisecond)
	lease.Release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was never unblocked")
	}
}

func TestManager_DifferentKeysIndependent(t *testing.T) {
	m := NewManager()

	leaseA, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)
	defer leaseA.Release()

	// Holding a.md must not block b.md.
	leaseB, err := m.Acquire(context.Background(), "notes/b.md", 50*time.Millisecond)
	require.NoError(t, err)
	leaseB.Release()
}

func TestManager_ContextCancelled(t *testing.T) {
	m := NewManager()

	lease, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)
	defer lease.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = m.Acquire(ctx, "notes/a.md", 5*time.Second)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestManager_DoubleReleaseIsSafe(t *testing.T) {
	m := NewManager()

	lease, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)

	lease.Release()
	lease.Release() // Must not free a lock it no longer holds.

	lease2, err := m.Acquire(context.Background(), "notes/a.md", time.Second)
	require.NoError(t, err)

	// The stale lease's second Release must not have unlocked lease2.
	_, err = m.Acquire(context.Background(), "notes/a.md", 20*time.Millisecond)
	assert.True(t, errors.Is(err, domain.ErrLockTimeout))

	lease2.Release()
}

func TestManager_SerialisesConcurrentHolders(t *testing.T) {
	m := NewManager()

	const workers = 16
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			lease, err := m.Acquire(context.Background(), "notes/a.md", 5*time.Second)
			if err != nil {
				t.Error(err)
				return
			}
			defer lease.Release()

			// Unprotected read-modify-write; the lock makes it safe.
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}
