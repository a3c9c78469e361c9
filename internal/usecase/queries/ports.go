package queries

import (
	"context"
	"time"

	"wave-studio-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidDate     = errs.New("invalid date")
	ErrSlotNotFound    = errs.New("slot not found")
	ErrBookingNotFound = errs.New("booking not found")
)

// CountKey identifies one slot occurrence in a batched booking-count map.
func CountKey(slotID uuid.UUID, date string) string {
	return slotID.String() + "_" + date
}

type SlotReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SlotView, error)
	FindActiveByDay(ctx context.Context, dayOfWeek int) ([]SlotView, error)
	FindActive(ctx context.Context, instructorID *uuid.UUID) ([]SlotView, error)
	FindInstructors(ctx context.Context) ([]InstructorView, error)
}

type BookingReader interface {
	CountActive(ctx context.Context, slotID uuid.UUID, date string) (int, error)
	HasActiveBooking(ctx context.Context, userID, slotID uuid.UUID, date string) (bool, error)
	CountActiveByDates(ctx context.Context, dates []string) (map[string]int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]BookingView, error)
	FindNextByUser(ctx context.Context, userID uuid.UUID, today string) (*BookingView, error)
	FindAdmin(ctx context.Context, filter AdminBookingFilter) ([]AdminBookingView, error)
	CountActiveOnDate(ctx context.Context, date string) (int, error)
	SumConfirmedRevenueOnDate(ctx context.Context, date string) (int, error)
	CountUpTo(ctx context.Context, date string) (total int, confirmed int, err error)
	SumAmountByStatusBetween(ctx context.Context, from, to string) (paid int, pending int, err error)
}

type WaitlistReader interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]WaitlistEntryView, error)
	FindActiveForSlot(ctx context.Context, slotID uuid.UUID, date string) ([]WaitlistEntryView, error)
	CountActiveForSlot(ctx context.Context, slotID uuid.UUID, date string) (int, error)
	FindAdmin(ctx context.Context, date *string) ([]WaitlistEntryView, error)
}

type ProfileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProfileView, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}
