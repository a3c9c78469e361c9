package repository

import (
	"context"
	"time"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"

	"github.com/google/uuid"
)

// NotificationRepository is the outbox table. Commands append jobs inside
// the same transaction as the state change; the relay worker drains them
// toward the external dispatcher. Delivery failures never reach the user.
type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(pool db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: pool}
}

type Job struct {
	ID       uuid.UUID
	Topic    string
	Payload  []byte
	Attempts int
}

// CreateJob appends a job due at runAt. runAt comes from the caller's
// clock, so created_at does too; this package never reads the wall clock.
func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, topic string, payload []byte, runAt time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO notification_jobs (id, topic, payload, status, attempts, next_retry_at, created_at, updated_at)
		VALUES ($1, $2, $3, 'queued', 0, $4, $4, $4)
	`, uuid.New(), topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}

// ClaimDue picks up to limit due jobs and pushes their next_retry_at into
// the near future so a second worker skips them while the publish is in
// flight. Locks are released when the claim transaction commits, keeping
// them short-lived.
func (r *NotificationRepository) ClaimDue(ctx context.Context, tx db.DBTX, limit int, inFlightUntil time.Time) ([]Job, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, topic, payload, attempts
		FROM notification_jobs
		WHERE status = 'queued' AND next_retry_at <= NOW()
		ORDER BY next_retry_at ASC, created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim notification jobs", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Topic, &j.Payload, &j.Attempts); err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification job", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate notification jobs", err)
	}

	for _, j := range jobs {
		if _, err := tx.Exec(ctx, `
			UPDATE notification_jobs SET next_retry_at = $2, updated_at = NOW() WHERE id = $1
		`, j.ID, inFlightUntil); err != nil {
			return nil, infra.WrapRepoErr("failed to mark notification job in flight", err)
		}
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_jobs SET status = 'sent', updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification job sent", err)
	}
	return nil
}

// MarkFailed schedules the next retry, or parks the job as dead once the
// attempt budget is spent.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, lastErr string, dead bool) error {
	status := "queued"
	if dead {
		status = "dead"
	}
	_, err := r.db.Exec(ctx, `
		UPDATE notification_jobs
		SET status = $2, attempts = attempts + 1, next_retry_at = $3, last_error = $4, updated_at = NOW()
		WHERE id = $1
	`, id, status, nextRetryAt, pgconv.StringToPgtype(lastErr))
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification job failed", err)
	}
	return nil
}
