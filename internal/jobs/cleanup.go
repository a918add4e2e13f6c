// File: internal/jobs/cleanup.go
package jobs

import (
	"context"
	"time"

	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupJob periodically drops expired sessions, staged OAuth credentials
// and undelivered toasts. With the Redis session backend the session/handoff
// sweep is a no-op because keys expire via TTL.
type CleanupJob struct {
	sessions      session.Repository
	toasts        *notification.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewCleanupJob creates a new CleanupJob.
func NewCleanupJob(
	sessions session.Repository,
	toasts *notification.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *CleanupJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))
	return &CleanupJob{
		sessions:      sessions,
		toasts:        toasts,
		logger:        logger.Named("CleanupJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *CleanupJob) SetupAndStart() error {
	jobSpec := j.cfg.CleanupJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Cleanup job schedule not defined (CLEANUP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule cleanup job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Cleanup job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *CleanupJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expiredToasts := j.toasts.Sweep()

	if sweeper, ok := j.sessions.(session.Sweeper); ok {
		sessions, handoffs, err := sweeper.Sweep(ctx)
		if err != nil {
			j.logger.Error("Cleanup job run failed", zap.Error(err))
			return
		}
		if sessions > 0 || handoffs > 0 || expiredToasts > 0 {
			j.logger.Info("Cleanup job run completed",
				zap.Int("sessions_expired", sessions),
				zap.Int("handoffs_expired", handoffs),
				zap.Int("toasts_expired", expiredToasts))
		}
		return
	}

	if expiredToasts > 0 {
		j.logger.Info("Cleanup job run completed", zap.Int("toasts_expired", expiredToasts))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *CleanupJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping cleanup job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Cleanup job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Cleanup job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger adapts zap.Logger to the cron.Logger interface.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.zl.Sugar().Infow(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.zl.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
