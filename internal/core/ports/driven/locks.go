package driven

import (
	"context"
	"time"
)

// LockManager provides per-path mutual exclusion for reconciliation.
// Two reconciliations of the same path must never interleave; different
// paths may proceed concurrently.
type LockManager interface {
	// Acquire takes the exclusive lock for key, waiting at most timeout.
	// Returns domain.ErrLockTimeout when the lock cannot be acquired in
	// time, or ctx.Err() when the context ends first.
	Acquire(ctx context.Context, key string, timeout time.Duration) (Lease, error)
}

// Lease is a held lock. Release must be called on every exit path;
// releasing more than once is safe.
type Lease interface {
	// Release returns the lock to the manager.
	Release()
}
