// Package waitlist models the FIFO queue kept per (slot, date) when a class
// is full.
//
// Entry state machine:
//
//	waiting  -> notified  (promotion when a spot frees up)
//	notified -> confirmed (user converts the offer into a booking in time)
//	notified -> expired   (confirmation window passed; next entry promoted)
//	waiting|notified -> cancelled (user leaves the queue)
package waitlist

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ConfirmationWindow is how long a notified user has to claim their spot.
const ConfirmationWindow = 2 * time.Hour

var (
	ErrInvalidStatus   = errors.New("invalid waitlist status")
	ErrNotWaiting      = errors.New("entry is not in waiting status")
	ErrNotNotified     = errors.New("entry is not in notified status")
	ErrAlreadyTerminal = errors.New("entry is in a terminal status")
	ErrOfferExpired    = errors.New("confirmation window has passed")
	ErrInvalidPosition = errors.New("position must be positive")
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusNotified  Status = "notified"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusWaiting, StatusNotified, StatusConfirmed, StatusExpired, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// Active entries hold a place in the queue.
func (s Status) IsActive() bool {
	return s == StatusWaiting || s == StatusNotified
}

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusExpired || s == StatusCancelled
}

type Entry struct {
	id          uuid.UUID
	userID      uuid.UUID
	slotID      uuid.UUID
	bookingDate string // "YYYY-MM-DD"
	position    int
	status      Status
	notifiedAt  *time.Time
	expiresAt   *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// New creates a waiting entry at the given queue position. Positions are
// allocated by the store (get_next_waitlist_position) so concurrent joins
// cannot collide.
func New(userID, slotID uuid.UUID, bookingDate string, position int, now time.Time) (*Entry, error) {
	if position < 1 {
		return nil, ErrInvalidPosition
	}
	return &Entry{
		id:          uuid.New(),
		userID:      userID,
		slotID:      slotID,
		bookingDate: bookingDate,
		position:    position,
		status:      StatusWaiting,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func Reconstruct(
	id, userID, slotID uuid.UUID,
	bookingDate string,
	position int,
	status Status,
	notifiedAt, expiresAt *time.Time,
	createdAt, updatedAt time.Time,
) *Entry {
	return &Entry{
		id:          id,
		userID:      userID,
		slotID:      slotID,
		bookingDate: bookingDate,
		position:    position,
		status:      status,
		notifiedAt:  notifiedAt,
		expiresAt:   expiresAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Notify promotes a waiting entry: the user is offered the freed spot and
// has ConfirmationWindow from now to claim it.
func (e *Entry) Notify(now time.Time) error {
	if e.status != StatusWaiting {
		return ErrNotWaiting
	}
	expires := now.Add(ConfirmationWindow)
	e.status = StatusNotified
	e.notifiedAt = &now
	e.expiresAt = &expires
	e.updatedAt = now
	return nil
}

// Confirm converts a notified, unexpired offer into the terminal confirmed
// state. The caller is responsible for creating the actual booking.
func (e *Entry) Confirm(now time.Time) error {
	if e.status != StatusNotified {
		return ErrNotNotified
	}
	if e.IsExpired(now) {
		return ErrOfferExpired
	}
	e.status = StatusConfirmed
	e.updatedAt = now
	return nil
}

// Expire marks a notified entry whose window has lapsed. Expiry is lazy:
// it happens on the next access, not via a background sweeper.
func (e *Entry) Expire(now time.Time) error {
	if e.status != StatusNotified {
		return ErrNotNotified
	}
	e.status = StatusExpired
	e.updatedAt = now
	return nil
}

// CancelEntry is the user voluntarily leaving the queue. Remaining positions
// are not renumbered; promotion always picks the lowest remaining waiting
// position, so gaps are harmless.
func (e *Entry) CancelEntry(now time.Time) error {
	if e.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	e.status = StatusCancelled
	e.updatedAt = now
	return nil
}

func (e *Entry) IsExpired(now time.Time) bool {
	return e.expiresAt != nil && e.expiresAt.Before(now)
}

// EffectiveStatus is the status a read path should display: a notified
// entry past its window counts as expired even before the lazy-expiry
// write has happened.
func (e *Entry) EffectiveStatus(now time.Time) Status {
	if e.status == StatusNotified && e.IsExpired(now) {
		return StatusExpired
	}
	return e.status
}

func (e *Entry) ID() uuid.UUID          { return e.id }
func (e *Entry) UserID() uuid.UUID      { return e.userID }
func (e *Entry) SlotID() uuid.UUID      { return e.slotID }
func (e *Entry) BookingDate() string    { return e.bookingDate }
func (e *Entry) Position() int          { return e.position }
func (e *Entry) Status() Status         { return e.status }
func (e *Entry) NotifiedAt() *time.Time { return e.notifiedAt }
func (e *Entry) ExpiresAt() *time.Time  { return e.expiresAt }
func (e *Entry) CreatedAt() time.Time   { return e.createdAt }
func (e *Entry) UpdatedAt() time.Time   { return e.updatedAt }
