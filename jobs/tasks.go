package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/gymstack/gymstack/internal/authz"
	jobmetrics "github.com/gymstack/gymstack/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGrantDrift re-runs the catalog drift verification so drift
	// introduced after startup (a migration, a manual fix gone wrong) is
	// still surfaced.
	TaskGrantDrift = "authz:grant_drift"
)

// NewGrantDriftTask constructs an Asynq task.
func NewGrantDriftTask() *asynq.Task {
	return asynq.NewTask(TaskGrantDrift, nil)
}

// GrantDriftHandler returns the handler for TaskGrantDrift tasks. The check
// only warns; missing rows deny by themselves, so there is nothing to repair
// automatically.
func GrantDriftHandler(store authz.GrantStore, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		tracker := metrics.Track(TaskGrantDrift)
		missing, err := authz.VerifyCatalog(ctx, store, logger)
		if err != nil {
			return tracker.End(err)
		}
		metrics.SetGrantDrift(len(missing))
		logger.Info("grant drift check executed",
			slog.String("job", TaskGrantDrift),
			slog.Int("missing_codes", len(missing)))
		return tracker.End(nil)
	}
}
