package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
	"github.com/lodestone-hq/vaultsync/internal/logger"
)

const (
	// tickInterval is how often the scheduler polls the store for due
	// tasks. Task intervals are multiples of minutes, so a minute tick
	// is fine-grained enough.
	tickInterval = time.Minute

	// historyKeep bounds the per-task result history in the store.
	historyKeep = 100
)

// Scheduler runs recurring background tasks, currently the periodic
// full-vault reconcile. Task state lives in a SchedulerStore so runs
// survive restarts.
type Scheduler struct {
	cfg        domain.SchedulerConfig
	store      driven.SchedulerStore
	reconciler driving.Reconciler

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. The reconciler may be nil when the
// vault is not configured yet; tasks then run as no-ops.
func NewScheduler(
	cfg domain.SchedulerConfig,
	store driven.SchedulerStore,
	reconciler driving.Reconciler,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		store:      store,
		reconciler: reconciler,
	}
}

// Start seeds the task store and blocks in the polling loop until Stop
// is called or the context is cancelled. Starting a running scheduler,
// or one whose master switch is off, is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		logger.Debug("scheduler disabled, not starting")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.seedTasks(ctx); err != nil {
		logger.Warn("scheduler: seeding tasks: %v", err)
	}

	return s.loop(ctx)
}

// Stop shuts the scheduler down and waits for in-flight tasks to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// seedTasks makes sure every enabled task from the config exists in the
// store, updating intervals that changed since the last run.
func (s *Scheduler) seedTasks(ctx context.Context) error {
	if tc := s.cfg.GetTaskConfig(domain.TaskIDVaultReconcile); tc.Enabled {
		if err := s.upsertTask(ctx, domain.TaskIDVaultReconcile, "Vault Reconcile", tc); err != nil {
			return err
		}
	}
	return nil
}

// upsertTask creates the task if the store has never seen it, otherwise
// reconciles the stored interval and enabled flag with the config. An
// interval change reschedules the next run from now.
func (s *Scheduler) upsertTask(ctx context.Context, id, name string, tc domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: tc.Interval,
			Enabled:  tc.Enabled,
			NextRun:  time.Now().Add(tc.Interval),
		}
	} else {
		if task.Interval != tc.Interval {
			task.Interval = tc.Interval
			task.NextRun = time.Now().Add(tc.Interval)
		}
		task.Enabled = tc.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// loop polls for due tasks until stopped. A poll happens immediately on
// entry so an overdue task does not wait out the first tick.
func (s *Scheduler) loop(ctx context.Context) error {
	s.runDueTasks(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runDueTasks(ctx)
		}
	}
}

// runDueTasks launches every enabled task whose NextRun has passed.
func (s *Scheduler) runDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: listing tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		if tasks[i].Due(now) {
			s.launchTask(ctx, &tasks[i])
		}
	}
}

// launchTask runs a task in its own goroutine, tracked by the wait group
// so Stop can drain in-flight work.
func (s *Scheduler) launchTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(ctx, task)
	}()
}

// execute dispatches a task to its handler and records the outcome.
func (s *Scheduler) execute(ctx context.Context, task *domain.ScheduledTask) {
	started := time.Now()

	var processed int
	var err error
	switch task.ID {
	case domain.TaskIDVaultReconcile:
		processed, err = s.runVaultReconcile(ctx)
	default:
		logger.Warn("scheduler: no handler for task %q", task.ID)
		return
	}

	result := domain.TaskResult{
		TaskID:         task.ID,
		StartedAt:      started,
		EndedAt:        time.Now(),
		Success:        err == nil,
		ItemsProcessed: processed,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.record(ctx, task, result)
}

// record folds a run's result back into the task state and persists
// both. Store failures here are logged, not fatal; the next run will
// overwrite the stale state.
func (s *Scheduler) record(ctx context.Context, task *domain.ScheduledTask, result domain.TaskResult) {
	task.LastRun = result.StartedAt
	task.NextRun = result.EndedAt.Add(task.Interval)
	if result.Success {
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	} else {
		task.LastError = result.Error
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: saving task %s: %v", task.ID, err)
	}
	if err := s.store.RecordResult(ctx, &result); err != nil {
		logger.Warn("scheduler: recording result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Warn("scheduler: pruning history: %v", err)
	}
}

// runVaultReconcile sweeps the whole vault. A sweep already in flight is
// not an error, the periodic run simply yields to it.
func (s *Scheduler) runVaultReconcile(ctx context.Context) (int, error) {
	if s.reconciler == nil {
		return 0, nil
	}

	report, err := s.reconciler.ReconcileAll(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrReconcileInProgress) {
			logger.Debug("scheduler: reconcile already running, skipping")
			return 0, nil
		}
		return 0, err
	}

	return report.Created + report.Updated + report.Deleted, nil
}
