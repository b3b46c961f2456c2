package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
)

// CleanupJobType identifies retention cleanup jobs.
const CleanupJobType = "attendance.cleanup"

// CleanupPayload is carried by cleanup jobs.
type CleanupPayload struct {
	Cutoff      time.Time `json:"cutoff"`
	RequestedBy string    `json:"requested_by,omitempty"`
}

type staleAttendanceDeleter interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupWorker executes queued cleanup jobs.
type CleanupWorker struct {
	repo    staleAttendanceDeleter
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCleanupWorker constructs a worker.
func NewCleanupWorker(repo staleAttendanceDeleter, metrics *MetricsService, logger *zap.Logger) *CleanupWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupWorker{repo: repo, metrics: metrics, logger: logger}
}

// Handle processes a queue job.
func (w *CleanupWorker) Handle(ctx context.Context, job jobs.Job) error {
	if job.Type != CleanupJobType {
		w.logger.Warn("ignoring unknown job type", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	var payload CleanupPayload
	if err := job.Decode(&payload); err != nil {
		w.logger.Error("dropping cleanup job with malformed payload", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	if payload.Cutoff.IsZero() {
		w.logger.Error("dropping cleanup job without cutoff", zap.String("job_id", job.ID))
		return nil
	}

	deleted, err := w.repo.DeleteBefore(ctx, payload.Cutoff)
	if err != nil {
		return fmt.Errorf("cleanup job %s: %w", job.ID, err)
	}
	w.metrics.RecordCleanup(deleted)
	w.logger.Info("attendance cleanup job finished",
		zap.String("job_id", job.ID),
		zap.Time("cutoff", payload.Cutoff),
		zap.Int64("deleted", deleted),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}
