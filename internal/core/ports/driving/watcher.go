package driving

import "context"

// Watcher reacts to live vault changes, keeping the index current while
// notes are being edited.
type Watcher interface {
	// Run consumes change events until the context is cancelled or the
	// underlying store stops watching.
	Run(ctx context.Context) error
}
