package queries

import (
	"context"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/pkg/dateutil"
	"wave-studio-api/internal/pkg/errs"

	"github.com/google/uuid"
)

type BookingQuery struct {
	bookings BookingReader
	clock    clock.Clock
}

func NewBookingQuery(bookings BookingReader, clk clock.Clock) *BookingQuery {
	return &BookingQuery{bookings: bookings, clock: clk}
}

func (q *BookingQuery) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingView, error) {
	views, err := q.bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []BookingView{}
	}
	return views, nil
}

// GetBookingByID enforces ownership: a booking belonging to someone else is
// reported as not found rather than forbidden, so IDs cannot be probed.
func (q *BookingQuery) GetBookingByID(ctx context.Context, userID, bookingID uuid.UUID) (*BookingView, error) {
	view, err := q.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrBookingNotFound)
		}
		return nil, err
	}
	if view.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return view, nil
}

// GetNextUserBooking returns the user's next upcoming class, or nil when
// nothing is scheduled.
func (q *BookingQuery) GetNextUserBooking(ctx context.Context, userID uuid.UUID) (*BookingView, error) {
	today := dateutil.FormatDate(q.clock.Now())
	return q.bookings.FindNextByUser(ctx, userID, today)
}

func (q *BookingQuery) GetAdminBookings(ctx context.Context, filter AdminBookingFilter) ([]AdminBookingView, error) {
	if filter.Date != nil {
		if _, err := dateutil.ParseDate(*filter.Date); err != nil {
			return nil, errs.Mark(err, ErrInvalidDate)
		}
	}
	views, err := q.bookings.FindAdmin(ctx, filter)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []AdminBookingView{}
	}
	return views, nil
}
