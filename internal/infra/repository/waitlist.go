package repository

import (
	"context"
	"time"

	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type WaitlistRepository struct {
	db db.DBTX
}

func NewWaitlistRepository(pool db.DBTX) *WaitlistRepository {
	return &WaitlistRepository{db: pool}
}

// NextPosition allocates the next queue position through the store-side
// function, so concurrent joins cannot hand out the same position.
func (r *WaitlistRepository) NextPosition(ctx context.Context, tx db.DBTX, slotID uuid.UUID, date string) (int, error) {
	var position int
	err := tx.QueryRow(ctx, `
		SELECT get_next_waitlist_position($1, $2::date)
	`, slotID, date).Scan(&position)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to allocate waitlist position", err)
	}
	return position, nil
}

func (r *WaitlistRepository) Create(ctx context.Context, tx db.DBTX, e *waitlist.Entry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO waitlist (id, user_id, slot_id, booking_date, position, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $7)
	`, e.ID(), e.UserID(), e.SlotID(), e.BookingDate(), e.Position(), string(e.Status()), e.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("already waitlisted", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert waitlist entry", err)
	}
	return nil
}

func (r *WaitlistRepository) FindByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	return r.scanEntry(r.db.QueryRow(ctx, waitlistEntrySelect+` WHERE id = $1`, id))
}

func (r *WaitlistRepository) HasActiveEntry(ctx context.Context, userID, slotID uuid.UUID, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM waitlist
			WHERE user_id = $1 AND slot_id = $2 AND booking_date = $3::date
			  AND status IN ('waiting', 'notified')
		)
	`, userID, slotID, date).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check waitlist membership", err)
	}
	return exists, nil
}

// LockNextWaiting claims the lowest-position waiting entry for (slot, date),
// or returns nil when the queue is empty. SKIP LOCKED keeps two concurrent
// promotions from picking the same entry.
func (r *WaitlistRepository) LockNextWaiting(ctx context.Context, tx db.DBTX, slotID uuid.UUID, date string) (*waitlist.Entry, error) {
	entry, err := r.scanEntry(tx.QueryRow(ctx, waitlistEntrySelect+`
		WHERE slot_id = $1 AND booking_date = $2::date AND status = 'waiting'
		ORDER BY position ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, slotID, date))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Update persists the entry's mutable fields after a domain transition.
func (r *WaitlistRepository) Update(ctx context.Context, tx db.DBTX, e *waitlist.Entry) error {
	tag, err := tx.Exec(ctx, `
		UPDATE waitlist
		SET status = $2, notified_at = $3, expires_at = $4, updated_at = $5
		WHERE id = $1
	`, e.ID(), string(e.Status()), pgconv.TimePtrToPgtype(e.NotifiedAt()),
		pgconv.TimePtrToPgtype(e.ExpiresAt()), e.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update waitlist entry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("waitlist entry not found", nil, infra.KindNotFound)
	}
	return nil
}

// TransitionStatus applies from→to only if the row is still in the from
// status, and reports whether this call won the transition. Lazy expiry
// leans on this to mark an entry expired exactly once under concurrent
// confirm attempts.
func (r *WaitlistRepository) TransitionStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, from, to waitlist.Status, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE waitlist SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to transition waitlist status", err)
	}
	return tag.RowsAffected() > 0, nil
}

const waitlistEntrySelect = `
	SELECT id, user_id, slot_id, booking_date::text, position, status,
	       notified_at, expires_at, created_at, updated_at
	FROM waitlist
`

func (r *WaitlistRepository) scanEntry(row interface{ Scan(dest ...any) error }) (*waitlist.Entry, error) {
	var (
		id, userID, slotID    uuid.UUID
		bookingDate, status   string
		position              int
		notifiedAt, expiresAt *time.Time
		createdAt, updatedAt  time.Time
	)
	err := row.Scan(&id, &userID, &slotID, &bookingDate, &position, &status,
		&notifiedAt, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("waitlist entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan waitlist entry", err)
	}

	parsedStatus, err := waitlist.ParseStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid waitlist status in store", err)
	}
	return waitlist.Reconstruct(id, userID, slotID, bookingDate, position, parsedStatus,
		notifiedAt, expiresAt, createdAt, updatedAt), nil
}
