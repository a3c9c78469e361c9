package readstore

import (
	"context"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
)

const bookingColumns = `
	b.id, b.user_id, b.slot_id, b.booking_date::text, b.status,
	b.amount_paid_cents, s.class_type, to_char(s.start_time, 'HH24:MI'),
	i.name, b.created_at, b.updated_at
`

const bookingJoins = `
	FROM bookings b
	JOIN schedule_slots s ON s.id = b.slot_id
	JOIN instructors i ON i.id = s.instructor_id
`

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(pool db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: pool}
}

// CountActive counts the bookings holding a spot for (slot, date). Never
// cached: staleness here directly causes overbooking.
func (r *BookingReadStore) CountActive(ctx context.Context, slotID uuid.UUID, date string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE slot_id = $1 AND booking_date = $2::date AND status IN ('pending', 'confirmed')
	`, slotID, date).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count active bookings", err)
	}
	return count, nil
}

func (r *BookingReadStore) HasActiveBooking(ctx context.Context, userID, slotID uuid.UUID, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND slot_id = $2 AND booking_date = $3::date
			  AND status IN ('pending', 'confirmed')
		)
	`, userID, slotID, date).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check existing booking", err)
	}
	return exists, nil
}

// CountActiveByDates batches the booking counts for a whole calendar window
// in one query, keyed by slotID+"_"+date. Keeps the calendar view at O(1)
// queries regardless of range size.
func (r *BookingReadStore) CountActiveByDates(ctx context.Context, dates []string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT slot_id, booking_date::text, COUNT(*)
		FROM bookings
		WHERE booking_date = ANY($1::date[]) AND status IN ('pending', 'confirmed')
		GROUP BY slot_id, booking_date
	`, dates)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to count bookings by dates", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slotID uuid.UUID
		var date string
		var count int
		if err := rows.Scan(&slotID, &date, &count); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking count row", err)
		}
		counts[queries.CountKey(slotID, date)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking count rows", err)
	}
	return counts, nil
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+bookingJoins+` WHERE b.id = $1`, id)

	view, err := scanBookingView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return view, nil
}

func (r *BookingReadStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]queries.BookingView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+bookingJoins+`
		WHERE b.user_id = $1
		ORDER BY b.booking_date DESC, b.created_at DESC
	`, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find bookings by user", err)
	}
	defer rows.Close()

	var result []queries.BookingView
	for rows.Next() {
		view, err := scanBookingView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking row", err)
		}
		result = append(result, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking rows", err)
	}
	return result, nil
}

// FindNextByUser returns the user's next upcoming active booking, or nil.
func (r *BookingReadStore) FindNextByUser(ctx context.Context, userID uuid.UUID, today string) (*queries.BookingView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+bookingColumns+bookingJoins+`
		WHERE b.user_id = $1 AND b.booking_date >= $2::date
		  AND b.status IN ('pending', 'confirmed')
		ORDER BY b.booking_date ASC, s.start_time ASC
		LIMIT 1
	`, userID, today)

	view, err := scanBookingView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find next booking", err)
	}
	return view, nil
}

func (r *BookingReadStore) FindAdmin(ctx context.Context, filter queries.AdminBookingFilter) ([]queries.AdminBookingView, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+`, p.full_name, p.email, p.phone
		`+bookingJoins+`
		JOIN profiles p ON p.id = b.user_id
		WHERE ($1::date IS NULL OR b.booking_date = $1::date)
		  AND ($2::text IS NULL OR b.status = $2)
		  AND ($3::text IS NULL OR p.full_name ILIKE '%' || $3 || '%' OR p.email ILIKE '%' || $3 || '%')
		ORDER BY b.booking_date DESC, b.created_at DESC
		LIMIT $4
	`, pgconv.StringPtrToPgtype(filter.Date), pgconv.StringPtrToPgtype(filter.Status),
		pgconv.StringPtrToPgtype(filter.Search), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find admin bookings", err)
	}
	defer rows.Close()

	var result []queries.AdminBookingView
	for rows.Next() {
		var v queries.AdminBookingView
		err := rows.Scan(
			&v.ID, &v.UserID, &v.SlotID, &v.BookingDate, &v.Status,
			&v.AmountPaidCents, &v.ClassType, &v.StartTime,
			&v.InstructorName, &v.CreatedAt, &v.UpdatedAt,
			&v.ClientName, &v.ClientEmail, &v.ClientPhone,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan admin booking row", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate admin booking rows", err)
	}
	return result, nil
}

// CountActiveOnDate is the "today's appointments" admin stat.
func (r *BookingReadStore) CountActiveOnDate(ctx context.Context, date string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE booking_date = $1::date AND status IN ('pending', 'confirmed')
	`, date).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count bookings on date", err)
	}
	return count, nil
}

func (r *BookingReadStore) SumConfirmedRevenueOnDate(ctx context.Context, date string) (int, error) {
	var sum int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_paid_cents), 0) FROM bookings
		WHERE booking_date = $1::date AND status = 'confirmed'
	`, date).Scan(&sum)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sum revenue on date", err)
	}
	return sum, nil
}

// CountUpTo returns (total, confirmed) booking counts up to and including
// the date, the inputs of the show-rate stat.
func (r *BookingReadStore) CountUpTo(ctx context.Context, date string) (total int, confirmed int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'confirmed')
		FROM bookings
		WHERE booking_date <= $1::date
	`, date).Scan(&total, &confirmed)
	if err != nil {
		return 0, 0, infra.WrapRepoErr("failed to count bookings up to date", err)
	}
	return total, confirmed, nil
}

// SumAmountByStatusBetween returns (confirmed, pending) amount sums for a
// date range, the inputs of the monthly payment stats.
func (r *BookingReadStore) SumAmountByStatusBetween(ctx context.Context, from, to string) (paid int, pending int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_paid_cents) FILTER (WHERE status = 'confirmed'), 0),
			COALESCE(SUM(amount_paid_cents) FILTER (WHERE status = 'pending'), 0)
		FROM bookings
		WHERE booking_date BETWEEN $1::date AND $2::date
	`, from, to).Scan(&paid, &pending)
	if err != nil {
		return 0, 0, infra.WrapRepoErr("failed to sum amounts by status", err)
	}
	return paid, pending, nil
}

func scanBookingView(row rowScanner) (*queries.BookingView, error) {
	var v queries.BookingView
	err := row.Scan(
		&v.ID, &v.UserID, &v.SlotID, &v.BookingDate, &v.Status,
		&v.AmountPaidCents, &v.ClassType, &v.StartTime,
		&v.InstructorName, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
