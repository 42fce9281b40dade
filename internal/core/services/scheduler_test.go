package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driven"
	"github.com/lodestone-hq/vaultsync/internal/core/ports/driving"
)

// --- Mock implementations for scheduler testing ---
// Note: These are prefixed with "sched" to avoid conflicts with other
// mocks in this package.

// schedMockStore implements driven.SchedulerStore for testing.
type schedMockStore struct {
	mu      sync.RWMutex
	tasks   map[string]*domain.ScheduledTask
	results map[string][]domain.TaskResult
	saveErr error
	listErr error
}

func newSchedMockStore() *schedMockStore {
	return &schedMockStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *schedMockStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *schedMockStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *schedMockStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *schedMockStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *schedMockStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *schedMockStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *schedMockStore) PruneHistory(_ context.Context, _ int) error {
	return nil
}

func (m *schedMockStore) resultCount(taskID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.results[taskID])
}

// schedMockReconciler implements driving.Reconciler for testing.
type schedMockReconciler struct {
	mu           sync.Mutex
	sweepCalls   int
	sweepReport  *domain.ReconcileReport
	sweepErr     error
	noteCalls    []string
	deleteCalls  []string
	noteErr      error
	deleteErr    error
}

func (m *schedMockReconciler) ReconcileAll(_ context.Context) (*domain.ReconcileReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepCalls++
	if m.sweepErr != nil {
		return nil, m.sweepErr
	}
	if m.sweepReport != nil {
		return m.sweepReport, nil
	}
	return &domain.ReconcileReport{}, nil
}

func (m *schedMockReconciler) ReconcileNote(_ context.Context, path, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noteCalls = append(m.noteCalls, path)
	return m.noteErr
}

func (m *schedMockReconciler) DeleteNote(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, path)
	return m.deleteErr
}

func (m *schedMockReconciler) Status() driving.ReconcileStatus {
	return driving.ReconcileStatus{}
}

func (m *schedMockReconciler) sweeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepCalls
}

// Ensure mocks implement interfaces
var _ driven.SchedulerStore = (*schedMockStore)(nil)
var _ driving.Reconciler = (*schedMockReconciler)(nil)

// ==================== Scheduler Tests ====================

func TestNewScheduler(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newSchedMockStore()
	reconciler := &schedMockReconciler{}

	scheduler := NewScheduler(config, store, reconciler)

	require.NotNil(t, scheduler)
	assert.Equal(t, config.Enabled, scheduler.cfg.Enabled)
}

func TestScheduler_Start_MasterSwitchOff(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	config.Enabled = false

	scheduler := NewScheduler(config, newSchedMockStore(), &schedMockReconciler{})

	// Must return immediately instead of entering the polling loop.
	err := scheduler.Start(context.Background())
	require.NoError(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newSchedMockStore()
	reconciler := &schedMockReconciler{}

	scheduler := NewScheduler(config, store, reconciler)

	ctx, cancel := context.WithCancel(context.Background())

	// Start scheduler in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Start(ctx)
	}()

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop scheduler
	cancel()
	err := scheduler.Stop()
	require.NoError(t, err)

	wg.Wait()
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newSchedMockStore(), &schedMockReconciler{})

	// Stop without starting should be safe
	err := scheduler.Stop()
	require.NoError(t, err)
}

func TestScheduler_SeedTasks(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newSchedMockStore()

	scheduler := NewScheduler(config, store, &schedMockReconciler{})

	ctx := context.Background()
	err := scheduler.seedTasks(ctx)
	require.NoError(t, err)

	// Check the reconcile task was created
	task, err := store.GetTask(ctx, domain.TaskIDVaultReconcile)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "Vault Reconcile", task.Name)
	assert.True(t, task.Enabled)
}

func TestScheduler_UpsertTask_UpdateInterval(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newSchedMockStore()

	scheduler := NewScheduler(config, store, &schedMockReconciler{})
	ctx := context.Background()

	// Create initial task
	taskCfg := domain.TaskConfig{
		Enabled:  true,
		Interval: 1 * time.Hour,
	}
	err := scheduler.upsertTask(ctx, "test-task", "Test Task", taskCfg)
	require.NoError(t, err)

	// Update with new interval
	taskCfg.Interval = 2 * time.Hour
	err = scheduler.upsertTask(ctx, "test-task", "Test Task", taskCfg)
	require.NoError(t, err)

	// Verify interval was updated
	task, err := store.GetTask(ctx, "test-task")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, task.Interval)
}

func TestScheduler_RunVaultReconcile(t *testing.T) {
	reconciler := &schedMockReconciler{
		sweepReport: &domain.ReconcileReport{Created: 3, Updated: 2, Deleted: 1},
	}

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newSchedMockStore(), reconciler)

	items, err := scheduler.runVaultReconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, reconciler.sweeps())
	assert.Equal(t, 6, items)
}

func TestScheduler_RunVaultReconcile_NilReconciler(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newSchedMockStore(), nil)

	items, err := scheduler.runVaultReconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, items)
}

func TestScheduler_RunVaultReconcile_AlreadyRunning(t *testing.T) {
	reconciler := &schedMockReconciler{sweepErr: domain.ErrReconcileInProgress}

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newSchedMockStore(), reconciler)

	// A sweep in flight is not a task failure.
	_, err := scheduler.runVaultReconcile(context.Background())
	require.NoError(t, err)
}

func TestScheduler_RunDueTasks(t *testing.T) {
	config := domain.DefaultSchedulerConfig()
	store := newSchedMockStore()
	reconciler := &schedMockReconciler{}

	scheduler := NewScheduler(config, store, reconciler)
	ctx := context.Background()

	// Create a task that is due
	now := time.Now()
	dueTask := &domain.ScheduledTask{
		ID:       domain.TaskIDVaultReconcile,
		Name:     "Vault Reconcile",
		Interval: 1 * time.Hour,
		NextRun:  now.Add(-1 * time.Minute), // Already past due
		Enabled:  true,
	}
	err := store.SaveTask(ctx, dueTask)
	require.NoError(t, err)

	// Check and run due tasks
	scheduler.runDueTasks(ctx)
	scheduler.wg.Wait()

	// Verify the sweep ran and its result was recorded
	assert.Equal(t, 1, reconciler.sweeps())
	assert.Equal(t, 1, store.resultCount(domain.TaskIDVaultReconcile))

	// NextRun must have moved forward
	task, err := store.GetTask(ctx, domain.TaskIDVaultReconcile)
	require.NoError(t, err)
	assert.True(t, task.NextRun.After(now))
}

func TestScheduler_DisabledTaskNotRun(t *testing.T) {
	store := newSchedMockStore()
	reconciler := &schedMockReconciler{}

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, reconciler)
	ctx := context.Background()

	disabled := &domain.ScheduledTask{
		ID:       domain.TaskIDVaultReconcile,
		Name:     "Vault Reconcile",
		Interval: time.Hour,
		NextRun:  time.Now().Add(-time.Minute),
		Enabled:  false,
	}
	require.NoError(t, store.SaveTask(ctx, disabled))

	scheduler.runDueTasks(ctx)
	scheduler.wg.Wait()

	assert.Zero(t, reconciler.sweeps())
}

func TestScheduler_FailedSweepRecordsError(t *testing.T) {
	store := newSchedMockStore()
	reconciler := &schedMockReconciler{sweepErr: errors.New("index offline")}

	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), store, reconciler)
	ctx := context.Background()

	task := &domain.ScheduledTask{
		ID:       domain.TaskIDVaultReconcile,
		Name:     "Vault Reconcile",
		Interval: time.Hour,
		NextRun:  time.Now().Add(-time.Minute),
		Enabled:  true,
	}
	require.NoError(t, store.SaveTask(ctx, task))

	scheduler.runDueTasks(ctx)
	scheduler.wg.Wait()

	saved, err := store.GetTask(ctx, domain.TaskIDVaultReconcile)
	require.NoError(t, err)
	assert.Equal(t, "index offline", saved.LastError)
	assert.True(t, saved.LastSuccess.IsZero())
}

func TestScheduler_LaunchTask_UnknownTaskID(t *testing.T) {
	scheduler := NewScheduler(domain.DefaultSchedulerConfig(), newSchedMockStore(), nil)
	ctx := context.Background()

	// Create unknown task
	task := &domain.ScheduledTask{
		ID:      "unknown-task",
		Name:    "Unknown",
		Enabled: true,
	}

	// This should just log and return, not panic
	scheduler.launchTask(ctx, task)
	scheduler.wg.Wait()
}
