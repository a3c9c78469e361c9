package outbox

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/infra/repository"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/pkg/config"
	"wave-studio-api/internal/usecase/shared"
)

const (
	inFlightLease = 30 * time.Second
	retryBase     = 30 * time.Second
	retryMax      = time.Hour
)

// Worker relays queued notification jobs to the message broker. Claiming
// uses a short lease so a crashed worker's jobs become visible again, and
// publishing happens after the claim transaction commits so broker latency
// never holds row locks.
type Worker struct {
	uow       shared.UnitOfWork
	jobs      *repository.NotificationRepository
	publisher Publisher
	clock     clock.Clock
	cfg       config.OutboxConfig
	logger    *slog.Logger

	done chan struct{}
}

func NewWorker(
	uow shared.UnitOfWork,
	jobs *repository.NotificationRepository,
	publisher Publisher,
	clk clock.Clock,
	cfg config.OutboxConfig,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		uow:       uow,
		jobs:      jobs,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.Error("outbox drain failed", "error", err)
			}
		}
	}
}

// drainOnce claims one batch and publishes it. Per-job failures are
// recorded on the job row and do not abort the batch.
func (w *Worker) drainOnce(ctx context.Context) error {
	var batch []repository.Job
	err := w.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		batch, err = w.jobs.ClaimDue(ctx, tx, w.cfg.BatchSize, w.clock.Now().Add(inFlightLease))
		return err
	})
	if err != nil {
		return err
	}

	for _, job := range batch {
		if err := w.publisher.Publish(ctx, job.Topic, job.Payload); err != nil {
			w.recordFailure(ctx, job, err)
			continue
		}
		if err := w.jobs.MarkSent(ctx, job.ID); err != nil {
			w.logger.Error("failed to mark job sent", "job_id", job.ID, "error", err)
		}
	}
	return nil
}

func (w *Worker) recordFailure(ctx context.Context, job repository.Job, publishErr error) {
	attempts := job.Attempts + 1
	dead := attempts >= w.cfg.MaxAttempts
	nextRetry := w.clock.Now().Add(retryBackoff(attempts))

	w.logger.Warn("notification publish failed",
		"job_id", job.ID, "topic", job.Topic, "attempts", attempts, "dead", dead, "error", publishErr)

	if err := w.jobs.MarkFailed(ctx, job.ID, nextRetry, publishErr.Error(), dead); err != nil {
		w.logger.Error("failed to record job failure", "job_id", job.ID, "error", err)
	}
}

// retryBackoff grows exponentially with jitter, capped at retryMax.
func retryBackoff(attempts int) time.Duration {
	backoff := retryBase
	for i := 1; i < attempts && backoff < retryMax; i++ {
		backoff *= 2
	}
	if backoff > retryMax {
		backoff = retryMax
	}
	jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
	return backoff + jitter
}
