package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/service"
)

const sweepLockKey = "complaint:escalation:sweep"

// EscalationWorker periodically raises unattended pending complaints up the
// routing ladder. The redis lock keeps concurrent instances from sweeping
// at the same time.
type EscalationWorker struct {
	complaints *service.ComplaintService
	redis      *persistence.Redis
	logger     *zap.Logger
	interval   time.Duration
	instanceID string
}

// NewEscalationWorker constructs the worker.
func NewEscalationWorker(complaints *service.ComplaintService, redis *persistence.Redis, logger *zap.Logger, cfg config.RoutingConfig) *EscalationWorker {
	return &EscalationWorker{
		complaints: complaints,
		redis:      redis,
		logger:     logger,
		interval:   cfg.SweepInterval(),
		instanceID: uuid.NewString(),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *EscalationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()
}

func (w *EscalationWorker) sweep(ctx context.Context) {
	held, err := w.redis.AcquireLock(ctx, sweepLockKey, w.instanceID, w.interval)
	if err != nil {
		w.logger.Warn("escalation sweep lock unavailable", zap.Error(err))
		return
	}
	if !held {
		return
	}
	defer func() {
		if err := w.redis.ReleaseLock(ctx, sweepLockKey, w.instanceID); err != nil {
			w.logger.Warn("escalation sweep unlock failed", zap.Error(err))
		}
	}()

	escalated, err := w.complaints.SweepEscalations(ctx)
	if err != nil {
		w.logger.Error("escalation sweep failed", zap.Error(err))
		return
	}
	if escalated > 0 {
		w.logger.Info("escalation sweep done", zap.Int("escalated", escalated))
	}
}
