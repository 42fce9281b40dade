package domain

import "time"

// ScheduledTask is a recurring background job persisted across runs, such
// as the periodic full-vault reconcile.
type ScheduledTask struct {
	// ID names the task. Built-in IDs are the TaskID constants below.
	ID string

	// Name is the label shown in status output.
	Name string

	// Interval is the gap between runs.
	Interval time.Duration

	// LastRun is when the task last started, successful or not.
	LastRun time.Time

	// NextRun is when the task becomes due again. A zero NextRun means
	// the task has never been scheduled and is due immediately.
	NextRun time.Time

	// LastError holds the message from the most recent failed run. It
	// is cleared on the next success.
	LastError string

	// LastSuccess is when the task last completed cleanly.
	LastSuccess time.Time

	// Enabled gates execution. Disabled tasks keep their state but are
	// skipped by the scheduler.
	Enabled bool
}

// Due reports whether the task should run at the given instant. Disabled
// tasks are never due.
func (t *ScheduledTask) Due(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskResult records one execution of a scheduled task.
type TaskResult struct {
	// TaskID names the task that ran.
	TaskID string

	// StartedAt and EndedAt bound the run.
	StartedAt time.Time
	EndedAt   time.Time

	// Success is false when the run returned an error.
	Success bool

	// Error holds the failure message when Success is false.
	Error string

	// ItemsProcessed counts notes touched by the run.
	ItemsProcessed int
}

// SchedulerConfig configures the background scheduler.
type SchedulerConfig struct {
	// Enabled is the master switch. When false no tasks run at all.
	Enabled bool

	// TaskConfigs maps task ID to its per-task settings.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds the per-task knobs.
type TaskConfig struct {
	// Enabled gates this one task.
	Enabled bool

	// Interval is how often the task runs.
	Interval time.Duration
}

// GetTaskConfig looks up the settings for one task. Unknown task IDs
// return a zero TaskConfig, which is disabled.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig enables an hourly full-vault reconcile.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDVaultReconcile: {
				Enabled:  true,
				Interval: 1 * time.Hour,
			},
		},
	}
}

// Task IDs for built-in tasks.
const (
	// TaskIDVaultReconcile runs a full reconciliation of the vault
	// against the vector index.
	TaskIDVaultReconcile = "vault-reconcile"
)
