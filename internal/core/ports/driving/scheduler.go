package driving

import "context"

// Scheduler runs recurring background work, currently the periodic
// full-vault reconcile sweep.
type Scheduler interface {
	// Start seeds and runs the task loop. It blocks until Stop is
	// called or the context is cancelled.
	Start(ctx context.Context) error

	// Stop shuts the loop down and waits for in-flight tasks.
	Stop() error
}
