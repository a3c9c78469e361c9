package readstore

import (
	"context"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
)

type WaitlistReadStore struct {
	db db.DBTX
}

func NewWaitlistReadStore(pool db.DBTX) *WaitlistReadStore {
	return &WaitlistReadStore{db: pool}
}

const waitlistViewColumns = `
	w.id, w.user_id, w.slot_id, w.booking_date::text, w.position, w.status,
	w.notified_at, w.expires_at, s.class_type,
	to_char(s.start_time, 'HH24:MI'), i.name, w.created_at
`

const waitlistViewJoins = `
	FROM waitlist w
	JOIN schedule_slots s ON s.id = w.slot_id
	JOIN instructors i ON i.id = s.instructor_id
`

// FindActiveByUser lists the user's open queue spots ordered by class date.
func (r *WaitlistReadStore) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]queries.WaitlistEntryView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+waitlistViewColumns+waitlistViewJoins+`
		WHERE w.user_id = $1 AND w.status IN ('waiting', 'notified')
		ORDER BY w.booking_date ASC
	`, userID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find waitlist entries by user", err)
	}
	defer rows.Close()

	return collectWaitlistViews(rows, false)
}

// FindActiveForSlot lists the queue for one slot occurrence in position
// order, with client contact details for the admin view.
func (r *WaitlistReadStore) FindActiveForSlot(ctx context.Context, slotID uuid.UUID, date string) ([]queries.WaitlistEntryView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+waitlistViewColumns+`, p.full_name, p.email
		`+waitlistViewJoins+`
		JOIN profiles p ON p.id = w.user_id
		WHERE w.slot_id = $1 AND w.booking_date = $2::date
		  AND w.status IN ('waiting', 'notified')
		ORDER BY w.position ASC
	`, slotID, date)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find waitlist for slot", err)
	}
	defer rows.Close()

	return collectWaitlistViews(rows, true)
}

func (r *WaitlistReadStore) CountActiveForSlot(ctx context.Context, slotID uuid.UUID, date string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM waitlist
		WHERE slot_id = $1 AND booking_date = $2::date AND status IN ('waiting', 'notified')
	`, slotID, date).Scan(&count)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to count waitlist entries", err)
	}
	return count, nil
}

// FindAdmin lists all open waitlist entries, optionally for one date,
// ordered by date then position.
func (r *WaitlistReadStore) FindAdmin(ctx context.Context, date *string) ([]queries.WaitlistEntryView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+waitlistViewColumns+`, p.full_name, p.email
		`+waitlistViewJoins+`
		JOIN profiles p ON p.id = w.user_id
		WHERE w.status IN ('waiting', 'notified')
		  AND ($1::date IS NULL OR w.booking_date = $1::date)
		ORDER BY w.booking_date ASC, w.position ASC
	`, pgconv.StringPtrToPgtype(date))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find admin waitlist", err)
	}
	defer rows.Close()

	return collectWaitlistViews(rows, true)
}

func collectWaitlistViews(rows interface {
	rowScanner
	Next() bool
	Err() error
}, withProfile bool) ([]queries.WaitlistEntryView, error) {
	var result []queries.WaitlistEntryView
	for rows.Next() {
		var v queries.WaitlistEntryView
		dest := []any{
			&v.ID, &v.UserID, &v.SlotID, &v.BookingDate, &v.Position, &v.Status,
			&v.NotifiedAt, &v.ExpiresAt, &v.ClassType,
			&v.StartTime, &v.InstructorName, &v.CreatedAt,
		}
		if withProfile {
			dest = append(dest, &v.ClientName, &v.ClientEmail)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, infra.WrapRepoErr("failed to scan waitlist row", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate waitlist rows", err)
	}
	return result, nil
}
