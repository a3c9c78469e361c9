package queries

import (
	"context"
	"time"

	"wave-studio-api/internal/domain/booking"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/pkg/dateutil"

	"github.com/google/uuid"
)

type StatsQuery struct {
	bookings BookingReader
	profiles ProfileReader
	clock    clock.Clock
}

func NewStatsQuery(bookings BookingReader, profiles ProfileReader, clk clock.Clock) *StatsQuery {
	return &StatsQuery{bookings: bookings, profiles: profiles, clock: clk}
}

// GetUserStats derives the client dashboard numbers from the user's full
// booking history. Completed means a confirmed booking whose date has
// passed; spend only counts confirmed bookings.
func (q *StatsQuery) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	views, err := q.bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := dateutil.FormatDate(q.clock.Now())
	stats := UserStats{}
	instructors := make(map[string]struct{})

	for _, v := range views {
		switch {
		case v.Status == string(booking.StatusCancelled):
			continue
		case v.BookingDate >= today:
			stats.Upcoming++
		case v.Status == string(booking.StatusConfirmed):
			stats.Completed++
		}
		if v.Status == string(booking.StatusConfirmed) {
			stats.TotalSpentCents += v.AmountPaidCents
			instructors[v.InstructorName] = struct{}{}
		}
	}
	stats.InstructorCount = len(instructors)
	return &stats, nil
}

func (q *StatsQuery) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	now := q.clock.Now()
	today := dateutil.FormatDate(now)

	appointments, err := q.bookings.CountActiveOnDate(ctx, today)
	if err != nil {
		return nil, err
	}
	revenue, err := q.bookings.SumConfirmedRevenueOnDate(ctx, today)
	if err != nil {
		return nil, err
	}
	newClients, err := q.profiles.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	total, confirmed, err := q.bookings.CountUpTo(ctx, today)
	if err != nil {
		return nil, err
	}

	showRate := 0
	if total > 0 {
		showRate = confirmed * 100 / total
	}
	return &AdminStats{
		TodayAppointments:  appointments,
		TodayRevenueCents:  revenue,
		NewClientsThisWeek: newClients,
		ShowRatePercent:    showRate,
	}, nil
}

// GetPaymentStats sums the current calendar month.
func (q *StatsQuery) GetPaymentStats(ctx context.Context) (*PaymentStats, error) {
	now := q.clock.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	paid, pending, err := q.bookings.SumAmountByStatusBetween(ctx,
		dateutil.FormatDate(monthStart), dateutil.FormatDate(monthEnd))
	if err != nil {
		return nil, err
	}
	return &PaymentStats{
		TotalCents:   paid + pending,
		PaidCents:    paid,
		PendingCents: pending,
	}, nil
}
