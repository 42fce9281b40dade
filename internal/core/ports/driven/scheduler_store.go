package driven

import (
	"context"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// SchedulerStore persists background task state and run history, so a
// restart picks up the reconcile cadence where it left off.
type SchedulerStore interface {
	// GetTask returns the task with the given ID, or nil with no error
	// when the store has never seen it.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns every stored task.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask upserts a task keyed by its ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// DeleteTask removes a task and its history.
	DeleteTask(ctx context.Context, taskID string) error

	// RecordResult appends one run record to the task's history.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit run records for a task, newest
	// first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory drops all but the newest keep records per task.
	PruneHistory(ctx context.Context, keep int) error
}
