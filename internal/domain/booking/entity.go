package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus    = errors.New("invalid booking status")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// Active statuses count against slot capacity.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is one user's reservation of one slot occurrence on one calendar
// date. The price is snapshotted into amountPaidCents at creation time.
type Booking struct {
	id              uuid.UUID
	userID          uuid.UUID
	slotID          uuid.UUID
	bookingDate     string // "YYYY-MM-DD"
	status          Status
	amountPaidCents int
	createdAt       time.Time
	updatedAt       time.Time
}

// New creates an auto-confirmed booking. There is no payment gate in this
// system, so bookings never start out pending.
func New(userID, slotID uuid.UUID, bookingDate string, priceCents int, now time.Time) *Booking {
	return &Booking{
		id:              uuid.New(),
		userID:          userID,
		slotID:          slotID,
		bookingDate:     bookingDate,
		status:          StatusConfirmed,
		amountPaidCents: priceCents,
		createdAt:       now,
		updatedAt:       now,
	}
}

func Reconstruct(
	id, userID, slotID uuid.UUID,
	bookingDate string,
	status Status,
	amountPaidCents int,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		userID:          userID,
		slotID:          slotID,
		bookingDate:     bookingDate,
		status:          status,
		amountPaidCents: amountPaidCents,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Cancel marks the booking cancelled. Cancellation never deletes the row;
// the admin hard-delete is a separate destructive operation.
func (b *Booking) Cancel(now time.Time) error {
	if b.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.status = StatusCancelled
	b.updatedAt = now
	return nil
}

func (b *Booking) IsActive() bool {
	return b.status.IsActive()
}

func (b *Booking) ID() uuid.UUID        { return b.id }
func (b *Booking) UserID() uuid.UUID    { return b.userID }
func (b *Booking) SlotID() uuid.UUID    { return b.slotID }
func (b *Booking) BookingDate() string  { return b.bookingDate }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) AmountPaidCents() int { return b.amountPaidCents }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
