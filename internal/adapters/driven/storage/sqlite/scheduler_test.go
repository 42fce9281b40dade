package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDVaultReconcile,
		Name:        "Vault Reconcile",
		Interval:    time.Hour,
		LastRun:     now.Add(-time.Hour),
		NextRun:     now.Add(time.Hour),
		LastSuccess: now.Add(-time.Hour),
		Enabled:     true,
	}
	require.NoError(t, ss.SaveTask(ctx, task))

	got, err := ss.GetTask(ctx, domain.TaskIDVaultReconcile)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.Name, got.Name)
	assert.Equal(t, time.Hour, got.Interval)
	assert.True(t, task.LastRun.Equal(got.LastRun))
	assert.True(t, task.NextRun.Equal(got.NextRun))
	assert.True(t, task.LastSuccess.Equal(got.LastSuccess))
	assert.Empty(t, got.LastError)
	assert.True(t, got.Enabled)
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store := newTestStore(t)

	task, err := store.SchedulerStore().GetTask(context.Background(), "no-such-task")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	task := &domain.ScheduledTask{
		ID:       domain.TaskIDVaultReconcile,
		Name:     "Vault Reconcile",
		Interval: time.Hour,
		Enabled:  true,
	}
	require.NoError(t, ss.SaveTask(ctx, task))

	task.Interval = 30 * time.Minute
	task.LastError = "vault unavailable"
	task.Enabled = false
	require.NoError(t, ss.SaveTask(ctx, task))

	got, err := ss.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 30*time.Minute, got.Interval)
	assert.Equal(t, "vault unavailable", got.LastError)
	assert.False(t, got.Enabled)
}

func TestSchedulerStore_SaveTask_NilTask(t *testing.T) {
	store := newTestStore(t)

	err := store.SchedulerStore().SaveTask(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_SaveTask_ZeroTimes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	// A freshly registered task has no run history yet
	task := &domain.ScheduledTask{
		ID:       domain.TaskIDVaultReconcile,
		Name:     "Vault Reconcile",
		Interval: time.Hour,
		Enabled:  true,
	}
	require.NoError(t, ss.SaveTask(ctx, task))

	got, err := ss.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.LastRun.IsZero())
	assert.True(t, got.NextRun.IsZero())
	assert.True(t, got.LastSuccess.IsZero())
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	tasks, err := ss.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{
		ID: "task-a", Name: "Task A", Interval: time.Hour, Enabled: true,
	}))
	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{
		ID: "task-b", Name: "Task B", Interval: time.Minute, Enabled: false,
	}))

	tasks, err = ss.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byID := make(map[string]domain.ScheduledTask, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}
	assert.Equal(t, "Task A", byID["task-a"].Name)
	assert.True(t, byID["task-a"].Enabled)
	assert.Equal(t, time.Minute, byID["task-b"].Interval)
	assert.False(t, byID["task-b"].Enabled)
}

func TestSchedulerStore_DeleteTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	task := &domain.ScheduledTask{
		ID: domain.TaskIDVaultReconcile, Name: "Vault Reconcile",
		Interval: time.Hour, Enabled: true,
	}
	require.NoError(t, ss.SaveTask(ctx, task))
	require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: time.Now().UTC(),
		EndedAt:   time.Now().UTC(),
		Success:   true,
	}))

	require.NoError(t, ss.DeleteTask(ctx, task.ID))

	got, err := ss.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// History is deleted along with the task
	history, err := ss.GetTaskHistory(ctx, task.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSchedulerStore_RecordResult(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDVaultReconcile, Name: "Vault Reconcile",
		Interval: time.Hour, Enabled: true,
	}))

	started := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
		TaskID:         domain.TaskIDVaultReconcile,
		StartedAt:      started,
		EndedAt:        started.Add(2 * time.Second),
		Success:        true,
		ItemsProcessed: 42,
	}))
	require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
		TaskID:    domain.TaskIDVaultReconcile,
		StartedAt: started.Add(time.Minute),
		EndedAt:   started.Add(time.Minute + time.Second),
		Success:   false,
		Error:     "embedding service unavailable",
	}))

	history, err := ss.GetTaskHistory(ctx, domain.TaskIDVaultReconcile, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Most recent first
	assert.False(t, history[0].Success)
	assert.Equal(t, "embedding service unavailable", history[0].Error)
	assert.True(t, history[1].Success)
	assert.Equal(t, 42, history[1].ItemsProcessed)
	assert.True(t, history[1].StartedAt.Equal(started))
	assert.True(t, history[1].EndedAt.Equal(started.Add(2*time.Second)))
}

func TestSchedulerStore_RecordResult_NilResult(t *testing.T) {
	store := newTestStore(t)

	err := store.SchedulerStore().RecordResult(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerStore_GetTaskHistory_Limit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{
		ID: domain.TaskIDVaultReconcile, Name: "Vault Reconcile",
		Interval: time.Hour, Enabled: true,
	}))

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
			TaskID:    domain.TaskIDVaultReconcile,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			EndedAt:   base.Add(time.Duration(i)*time.Minute + time.Second),
			Success:   true,
		}))
	}

	history, err := ss.GetTaskHistory(ctx, domain.TaskIDVaultReconcile, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].StartedAt.Equal(base.Add(4*time.Minute)))
	assert.True(t, history[2].StartedAt.Equal(base.Add(2*time.Minute)))
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ss := store.SchedulerStore()

	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{
		ID: "task-a", Name: "Task A", Interval: time.Hour, Enabled: true,
	}))
	require.NoError(t, ss.SaveTask(ctx, &domain.ScheduledTask{
		ID: "task-b", Name: "Task B", Interval: time.Hour, Enabled: true,
	}))

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 4; i++ {
		for _, taskID := range []string{"task-a", "task-b"} {
			require.NoError(t, ss.RecordResult(ctx, &domain.TaskResult{
				TaskID:    taskID,
				StartedAt: base.Add(time.Duration(i) * time.Minute),
				EndedAt:   base.Add(time.Duration(i)*time.Minute + time.Second),
				Success:   true,
			}))
		}
	}

	require.NoError(t, ss.PruneHistory(ctx, 2))

	// Retention applies per task, keeping the most recent results
	for _, taskID := range []string{"task-a", "task-b"} {
		history, err := ss.GetTaskHistory(ctx, taskID, 10)
		require.NoError(t, err)
		require.Len(t, history, 2, "task %s should keep two results", taskID)
		assert.True(t, history[0].StartedAt.Equal(base.Add(3*time.Minute)))
		assert.True(t, history[1].StartedAt.Equal(base.Add(2*time.Minute)))
	}
}
