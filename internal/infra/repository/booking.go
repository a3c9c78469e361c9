package repository

import (
	"context"
	"errors"
	"time"

	"wave-studio-api/internal/domain/booking"
	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(pool db.DBTX) *BookingRepository {
	return &BookingRepository{db: pool}
}

// CreateIfCapacity inserts the booking only if the slot still has a free
// spot. The slot row is locked first so concurrent inserts for the same
// occurrence serialize on the capacity count; the partial unique index on
// (user_id, slot_id, booking_date) rejects duplicates the application-level
// check raced past. This is the correctness backstop for the whole engine:
// the usecase-level availability check is only a fast-path rejection.
func (r *BookingRepository) CreateIfCapacity(ctx context.Context, tx db.DBTX, b *booking.Booking) error {
	var maxCapacity int
	err := tx.QueryRow(ctx, `
		SELECT max_capacity FROM schedule_slots WHERE id = $1 FOR UPDATE
	`, b.SlotID()).Scan(&maxCapacity)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return infra.WrapRepoErr("slot not found", err, infra.KindNotFound)
		}
		return infra.WrapRepoErr("failed to lock slot row", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO bookings (id, user_id, slot_id, booking_date, status, amount_paid_cents, created_at, updated_at)
		SELECT $1, $2, $3, $4::date, $5, $6, $7, $7
		WHERE (
			SELECT COUNT(*) FROM bookings
			WHERE slot_id = $3 AND booking_date = $4::date
			  AND status IN ('pending', 'confirmed')
		) < $8
	`, b.ID(), b.UserID(), b.SlotID(), b.BookingDate(), string(b.Status()),
		b.AmountPaidCents(), b.CreatedAt(), maxCapacity)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("duplicate booking", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("slot capacity exhausted", nil, infra.KindCapacityExceeded)
	}
	return nil
}

// FindByID loads the booking row for command-side mutation.
func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var (
		bookingID, userID, slotID uuid.UUID
		bookingDate, status       string
		amountPaidCents           int
		createdAt, updatedAt      time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, slot_id, booking_date::text, status, amount_paid_cents, created_at, updated_at
		FROM bookings WHERE id = $1
	`, id).Scan(&bookingID, &userID, &slotID, &bookingDate, &status, &amountPaidCents, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}

	parsedStatus, err := booking.ParseStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid booking status in store", err)
	}
	return booking.Reconstruct(bookingID, userID, slotID, bookingDate, parsedStatus, amountPaidCents, createdAt, updatedAt), nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status booking.Status, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(status), now)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// Delete is the admin hard-delete escape hatch. It bypasses cancellation
// semantics and waitlist promotion.
func (r *BookingRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}
