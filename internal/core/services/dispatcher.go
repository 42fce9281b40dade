package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
	"github.com/lodestone-hq/vaultsync/internal/logger"
)

const (
	// DefaultDebounce is how long a path must stay quiet before its
	// pending change is dispatched. Editors tend to write files in
	// bursts; the window folds a burst into a single reconcile.
	DefaultDebounce = 2 * time.Second

	// DefaultWatchWorkers is the number of reconciles that may run
	// concurrently. Per-path locks already serialise same-note work.
	DefaultWatchWorkers = 4
)

// Ensure Dispatcher implements the driving port.
var _ driving.Watcher = (*Dispatcher)(nil)

// Dispatcher turns note store change events into reconcile calls. Events
// are debounced per path, then handed to a bounded worker pool: the
// latest event for a path wins, so a rapid save burst costs one reconcile.
type Dispatcher struct {
	store      driven.NoteStore
	reconciler driving.Reconciler

	debounce time.Duration
	workers  int

	mu     sync.Mutex
	timers map[string]*time.Timer
	latest map[string]domain.NoteEventType
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDebounce sets the per-path quiet window.
func WithDebounce(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.debounce = d
		}
	}
}

// WithWatchWorkers sets how many reconciles may run at once.
func WithWatchWorkers(n int) DispatcherOption {
	return func(dp *Dispatcher) {
		if n > 0 {
			dp.workers = n
		}
	}
}

// NewDispatcher creates a dispatcher wired to the given store and
// reconciler.
func NewDispatcher(store driven.NoteStore, reconciler driving.Reconciler, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:      store,
		reconciler: reconciler,
		debounce:   DefaultDebounce,
		workers:    DefaultWatchWorkers,
		timers:     make(map[string]*time.Timer),
		latest:     make(map[string]domain.NoteEventType),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run watches the store and dispatches debounced changes until the
// context is cancelled or the store stops watching. Pending debounce
// windows are dropped on shutdown; the next full sweep reconciles
// anything missed.
func (d *Dispatcher) Run(ctx context.Context) error {
	events, err := d.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch vault: %w", err)
	}

	var group errgroup.Group
	group.SetLimit(d.workers)

	logger.Info("Watching vault for changes")

	for {
		select {
		case <-ctx.Done():
			d.stopTimers()
			_ = group.Wait()
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				d.stopTimers()
				_ = group.Wait()
				return nil
			}
			d.observe(ctx, &group, event)
		}
	}
}

// observe records the latest event for a path and (re)arms its debounce
// timer. A timer that fires while a newer event is being recorded simply
// consumes the newer event; events are never lost, the quiet window is
// merely shortened.
func (d *Dispatcher) observe(ctx context.Context, group *errgroup.Group, event domain.NoteEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	logger.Debug("Observed %s: %s", event.Type, event.Path)
	d.latest[event.Path] = event.Type

	if timer, ok := d.timers[event.Path]; ok {
		timer.Reset(d.debounce)
		return
	}

	path := event.Path
	d.timers[path] = time.AfterFunc(d.debounce, func() {
		d.fire(ctx, group, path)
	})
}

// fire consumes the pending event for a path and hands it to the worker
// pool.
func (d *Dispatcher) fire(ctx context.Context, group *errgroup.Group, path string) {
	d.mu.Lock()
	eventType, ok := d.latest[path]
	delete(d.latest, path)
	delete(d.timers, path)
	d.mu.Unlock()

	if !ok {
		return
	}

	group.Go(func() error {
		if err := d.dispatch(ctx, eventType, path); err != nil {
			logger.Warn("Failed to reconcile %s: %v", path, err)
		}
		// Per-path failures never stop the watch loop.
		return nil
	})
}

// dispatch routes one settled event to the reconciler.
func (d *Dispatcher) dispatch(ctx context.Context, eventType domain.NoteEventType, path string) error {
	switch eventType {
	case domain.NoteDeleted:
		return d.reconciler.DeleteNote(ctx, path)
	default:
		// Created and updated notes take the same route: content is
		// fetched from the store, and a note that vanished in the
		// meantime is a no-op.
		return d.reconciler.ReconcileNote(ctx, path, "")
	}
}

// stopTimers cancels every pending debounce window.
func (d *Dispatcher) stopTimers() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, timer := range d.timers {
		timer.Stop()
		delete(d.timers, path)
		delete(d.latest, path)
	}
}
