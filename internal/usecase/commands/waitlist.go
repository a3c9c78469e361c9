package commands

import (
	"context"

	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/errs"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
)

// JoinWaitlist appends the user to the slot occurrence's queue. The
// position comes from the store inside the transaction, so two concurrent
// joins get distinct positions; the partial unique index rejects a second
// active entry for the same user.
func (c *BookingCommand) JoinWaitlist(ctx context.Context, userID, slotID uuid.UUID, date string) (*waitlist.Entry, error) {
	if _, err := c.resolveBookableSlot(ctx, slotID, date); err != nil {
		return nil, err
	}

	waitlisted, err := c.waitlist.HasActiveEntry(ctx, userID, slotID, date)
	if err != nil {
		return nil, err
	}
	if waitlisted {
		return nil, ErrAlreadyWaitlisted
	}

	booked, err := c.bookingReader.HasActiveBooking(ctx, userID, slotID, date)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrAlreadyBooked
	}

	var entry *waitlist.Entry
	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		position, err := c.waitlist.NextPosition(ctx, tx, slotID, date)
		if err != nil {
			return err
		}
		entry, err = waitlist.New(userID, slotID, date, position, c.clock.Now())
		if err != nil {
			return err
		}
		if err := c.waitlist.Create(ctx, tx, entry); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, ErrAlreadyWaitlisted)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// LeaveWaitlist removes the user from the queue. Positions of the entries
// behind are left as-is; promotion picks the lowest remaining position, so
// gaps never matter. If the leaver held an active offer, that spot goes to
// the next entry.
func (c *BookingCommand) LeaveWaitlist(ctx context.Context, userID, entryID uuid.UUID) error {
	entry, err := c.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return err
	}

	hadOffer := entry.Status() == waitlist.StatusNotified && !entry.IsExpired(c.clock.Now())

	if err := entry.CancelEntry(c.clock.Now()); err != nil {
		return errs.Mark(err, ErrWaitlistEntryInactive)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		return c.waitlist.Update(ctx, tx, entry)
	})
	if err != nil {
		return err
	}

	if hadOffer {
		if err := c.PromoteFromWaitlist(ctx, entry.SlotID(), entry.BookingDate()); err != nil {
			c.logger.Error("waitlist promotion after leave failed",
				"slot_id", entry.SlotID(), "date", entry.BookingDate(), "error", err)
		}
	}
	return nil
}

// PromoteFromWaitlist offers a freed spot to the lowest-position waiting
// entry. Returns nil when the queue is empty. The claimed row is locked
// with SKIP LOCKED, so concurrent promotions for the same occurrence pick
// different entries.
func (c *BookingCommand) PromoteFromWaitlist(ctx context.Context, slotID uuid.UUID, date string) error {
	slot, err := c.slotReader.FindByID(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrSlotNotFound)
		}
		return err
	}

	return c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		entry, err := c.waitlist.LockNextWaiting(ctx, tx, slotID, date)
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}

		if err := entry.Notify(c.clock.Now()); err != nil {
			return err
		}
		if err := c.waitlist.Update(ctx, tx, entry); err != nil {
			return err
		}
		return c.enqueueSpotAvailable(ctx, tx, entry, slot)
	})
}

// ConfirmWaitlistSpot converts an active offer into a booking. An expired
// offer is marked expired exactly once and the next entry is promoted; a
// spot that was re-filled in the meantime surfaces as full.
func (c *BookingCommand) ConfirmWaitlistSpot(ctx context.Context, userID, entryID uuid.UUID) (*queries.BookingView, error) {
	entry, err := c.ownedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status() != waitlist.StatusNotified {
		return nil, ErrWaitlistEntryNotFound
	}

	now := c.clock.Now()
	if entry.IsExpired(now) {
		c.expireAndPromote(ctx, entry)
		return nil, ErrWaitlistExpired
	}

	view, err := c.CreateSlotBooking(ctx, userID, entry.SlotID(), entry.BookingDate())
	if err != nil {
		return nil, err
	}

	if err := entry.Confirm(now); err == nil {
		if uerr := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
			return c.waitlist.Update(ctx, tx, entry)
		}); uerr != nil {
			c.logger.Error("failed to mark waitlist entry confirmed",
				"entry_id", entry.ID(), "error", uerr)
		}
	}
	return view, nil
}

// expireAndPromote applies lazy expiry. The conditional transition makes
// this idempotent under concurrent confirm attempts: only the caller that
// wins the notified->expired flip promotes the next entry.
func (c *BookingCommand) expireAndPromote(ctx context.Context, entry *waitlist.Entry) {
	var won bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		won, err = c.waitlist.TransitionStatus(ctx, tx, entry.ID(),
			waitlist.StatusNotified, waitlist.StatusExpired, c.clock.Now())
		return err
	})
	if err != nil {
		c.logger.Error("failed to expire waitlist entry", "entry_id", entry.ID(), "error", err)
		return
	}
	if !won {
		return
	}
	if err := c.PromoteFromWaitlist(ctx, entry.SlotID(), entry.BookingDate()); err != nil {
		c.logger.Error("waitlist promotion after expiry failed",
			"slot_id", entry.SlotID(), "date", entry.BookingDate(), "error", err)
	}
}

// ownedEntry loads the entry and masks other users' entries as not found.
func (c *BookingCommand) ownedEntry(ctx context.Context, userID, entryID uuid.UUID) (*waitlist.Entry, error) {
	entry, err := c.waitlist.FindByID(ctx, entryID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrWaitlistEntryNotFound)
		}
		return nil, err
	}
	if entry.UserID() != userID {
		return nil, ErrWaitlistEntryNotFound
	}
	return entry, nil
}

func (c *BookingCommand) enqueueSpotAvailable(ctx context.Context, tx db.DBTX, entry *waitlist.Entry, slot *queries.SlotView) error {
	recipient, err := c.recipientFor(ctx, entry.UserID())
	if err != nil {
		return err
	}
	expiresAt := c.clock.Now().Add(waitlist.ConfirmationWindow)
	if entry.ExpiresAt() != nil {
		expiresAt = *entry.ExpiresAt()
	}
	return c.enqueue(ctx, tx, TopicSpotAvailable, SpotAvailableEvent{
		Recipient: recipient,
		Class:     classInfoFor(slot, entry.BookingDate()),
		EntryID:   entry.ID().String(),
		Position:  entry.Position(),
		ExpiresAt: expiresAt,
	})
}
