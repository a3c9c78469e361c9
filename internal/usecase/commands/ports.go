package commands

import (
	"context"
	"time"

	"wave-studio-api/internal/domain/booking"
	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/infra/db"

	"github.com/google/uuid"
)

type BookingRepository interface {
	CreateIfCapacity(ctx context.Context, tx db.DBTX, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status booking.Status, now time.Time) error
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
}

type WaitlistRepository interface {
	NextPosition(ctx context.Context, tx db.DBTX, slotID uuid.UUID, date string) (int, error)
	Create(ctx context.Context, tx db.DBTX, e *waitlist.Entry) error
	FindByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error)
	HasActiveEntry(ctx context.Context, userID, slotID uuid.UUID, date string) (bool, error)
	LockNextWaiting(ctx context.Context, tx db.DBTX, slotID uuid.UUID, date string) (*waitlist.Entry, error)
	Update(ctx context.Context, tx db.DBTX, e *waitlist.Entry) error
	TransitionStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, from, to waitlist.Status, now time.Time) (bool, error)
}

// NotificationEnqueuer appends a delivery job to the outbox inside the
// caller's transaction.
type NotificationEnqueuer interface {
	CreateJob(ctx context.Context, tx db.DBTX, topic string, payload []byte, runAt time.Time) error
}

// ChangeFeed broadcasts booking changes to live subscribers. Best-effort:
// implementations must not return errors into the command flow.
type ChangeFeed interface {
	BookingChanged(ctx context.Context, eventType string, newRow, oldRow any)
}
