package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"wave-studio-api/internal/domain/booking"
	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/pkg/dateutil"
	"wave-studio-api/internal/pkg/errs"
	"wave-studio-api/internal/usecase/queries"
	"wave-studio-api/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSlotNotFound          = errs.New("slot not found")
	ErrInvalidBookingDate    = errs.New("date does not match slot weekday")
	ErrSlotFull              = errs.New("slot is fully booked")
	ErrDuplicateBooking      = errs.New("user already booked this slot")
	ErrBookingNotFound       = errs.New("booking not found")
	ErrAlreadyCancelled      = errs.New("booking already cancelled")
	ErrAlreadyWaitlisted     = errs.New("user already on this waitlist")
	ErrAlreadyBooked         = errs.New("user already has a booking for this slot")
	ErrWaitlistEntryNotFound = errs.New("waitlist entry not found")
	ErrWaitlistEntryInactive = errs.New("waitlist entry is no longer active")
	ErrWaitlistExpired       = errs.New("confirmation window has passed")
)

// BookingCommand is the write side of the engine: bookings, cancellations
// and the waitlist lifecycle. Every state change goes through a single
// transaction that also enqueues its notification job, so a committed
// change always has its notification queued and a rolled-back one never
// does.
type BookingCommand struct {
	uow      shared.UnitOfWork
	bookings BookingRepository
	waitlist WaitlistRepository
	outbox   NotificationEnqueuer
	feed     ChangeFeed

	slotReader    queries.SlotReader
	bookingReader queries.BookingReader
	profileReader queries.ProfileReader

	clock  clock.Clock
	logger *slog.Logger
}

func NewBookingCommand(
	uow shared.UnitOfWork,
	bookings BookingRepository,
	waitlist WaitlistRepository,
	outbox NotificationEnqueuer,
	feed ChangeFeed,
	slotReader queries.SlotReader,
	bookingReader queries.BookingReader,
	profileReader queries.ProfileReader,
	clk clock.Clock,
	logger *slog.Logger,
) *BookingCommand {
	return &BookingCommand{
		uow:           uow,
		bookings:      bookings,
		waitlist:      waitlist,
		outbox:        outbox,
		feed:          feed,
		slotReader:    slotReader,
		bookingReader: bookingReader,
		profileReader: profileReader,
		clock:         clk,
		logger:        logger,
	}
}

// CreateSlotBooking books one slot occurrence for the user. The upfront
// availability and duplicate checks are fast-path rejections only; the
// store-side conditional insert is what actually guarantees capacity under
// concurrency.
func (c *BookingCommand) CreateSlotBooking(ctx context.Context, userID, slotID uuid.UUID, date string) (*queries.BookingView, error) {
	slot, err := c.resolveBookableSlot(ctx, slotID, date)
	if err != nil {
		return nil, err
	}

	count, err := c.bookingReader.CountActive(ctx, slotID, date)
	if err != nil {
		return nil, err
	}
	if count >= slot.MaxCapacity {
		return nil, ErrSlotFull
	}

	booked, err := c.bookingReader.HasActiveBooking(ctx, userID, slotID, date)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrDuplicateBooking
	}

	now := c.clock.Now()
	b := booking.New(userID, slotID, date, slot.PriceCents, now)

	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.bookings.CreateIfCapacity(ctx, tx, b); err != nil {
			switch {
			case infra.IsKind(err, infra.KindCapacityExceeded):
				return errs.Mark(err, ErrSlotFull)
			case infra.IsKind(err, infra.KindDuplicateKey):
				return errs.Mark(err, ErrDuplicateBooking)
			case infra.IsKind(err, infra.KindNotFound):
				return errs.Mark(err, ErrSlotNotFound)
			}
			return err
		}
		return c.enqueueBookingCreated(ctx, tx, b, slot)
	})
	if err != nil {
		return nil, err
	}

	view, err := c.bookingReader.FindByID(ctx, b.ID())
	if err != nil {
		return nil, err
	}
	c.feed.BookingChanged(ctx, FeedBookingCreated, view, nil)
	return view, nil
}

// CancelBooking cancels the user's own booking and, after commit, offers
// the freed spot to the head of the waitlist. Promotion failures are
// logged, never surfaced: the cancellation already succeeded.
func (c *BookingCommand) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) error {
	return c.cancel(ctx, bookingID, &userID, "client")
}

// AdminCancelBooking cancels any booking on behalf of the studio.
func (c *BookingCommand) AdminCancelBooking(ctx context.Context, bookingID uuid.UUID) error {
	return c.cancel(ctx, bookingID, nil, "owner")
}

func (c *BookingCommand) cancel(ctx context.Context, bookingID uuid.UUID, ownerID *uuid.UUID, cancelledBy string) error {
	b, err := c.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrBookingNotFound)
		}
		return err
	}
	if ownerID != nil && b.UserID() != *ownerID {
		return ErrBookingNotFound
	}

	oldView, err := c.bookingReader.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	now := c.clock.Now()
	if err := b.Cancel(now); err != nil {
		return errs.Mark(err, ErrAlreadyCancelled)
	}

	slot, err := c.slotReader.FindByID(ctx, b.SlotID())
	if err != nil {
		return err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.bookings.UpdateStatus(ctx, tx, bookingID, booking.StatusCancelled, now); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrBookingNotFound)
			}
			return err
		}
		return c.enqueueBookingCancelled(ctx, tx, b, slot, cancelledBy)
	})
	if err != nil {
		return err
	}

	newView, err := c.bookingReader.FindByID(ctx, bookingID)
	if err == nil {
		c.feed.BookingChanged(ctx, FeedBookingCancelled, newView, oldView)
	}

	if err := c.PromoteFromWaitlist(ctx, b.SlotID(), b.BookingDate()); err != nil {
		c.logger.Error("waitlist promotion after cancellation failed",
			"slot_id", b.SlotID(), "date", b.BookingDate(), "error", err)
	}
	return nil
}

// AdminDeleteBooking hard-deletes the row. No cancellation notification is
// sent and no waitlist promotion runs; this is the back-office escape
// hatch for bookings that should never have existed.
func (c *BookingCommand) AdminDeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	oldView, err := c.bookingReader.FindByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrBookingNotFound)
		}
		return err
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := c.bookings.Delete(ctx, tx, bookingID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrBookingNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.feed.BookingChanged(ctx, FeedBookingDeleted, nil, oldView)
	return nil
}

// resolveBookableSlot loads the slot and verifies the date is a real
// calendar date falling on the slot's weekday.
func (c *BookingCommand) resolveBookableSlot(ctx context.Context, slotID uuid.UUID, date string) (*queries.SlotView, error) {
	if _, err := dateutil.ParseDate(date); err != nil {
		return nil, errs.Mark(err, ErrInvalidBookingDate)
	}

	slot, err := c.slotReader.FindByID(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrSlotNotFound)
		}
		return nil, err
	}
	if !slot.IsActive {
		return nil, ErrSlotNotFound
	}

	matches, err := dateutil.WeekdayMatches(date, slot.DayOfWeek)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidBookingDate)
	}
	if !matches {
		return nil, ErrInvalidBookingDate
	}
	return slot, nil
}

func (c *BookingCommand) recipientFor(ctx context.Context, userID uuid.UUID) (Recipient, error) {
	profile, err := c.profileReader.FindByID(ctx, userID)
	if err != nil {
		return Recipient{}, err
	}
	return Recipient{Name: profile.FullName, Email: profile.Email, Phone: profile.Phone}, nil
}

func classInfoFor(slot *queries.SlotView, date string) ClassInfo {
	return ClassInfo{
		ClassType:      slot.ClassType,
		Date:           date,
		StartTime:      slot.StartTime,
		InstructorName: slot.InstructorName,
	}
}

func (c *BookingCommand) enqueueBookingCreated(ctx context.Context, tx db.DBTX, b *booking.Booking, slot *queries.SlotView) error {
	recipient, err := c.recipientFor(ctx, b.UserID())
	if err != nil {
		return err
	}
	return c.enqueue(ctx, tx, TopicBookingCreated, BookingCreatedEvent{
		Recipient:       recipient,
		Class:           classInfoFor(slot, b.BookingDate()),
		BookingID:       b.ID().String(),
		AmountPaidCents: b.AmountPaidCents(),
	})
}

func (c *BookingCommand) enqueueBookingCancelled(ctx context.Context, tx db.DBTX, b *booking.Booking, slot *queries.SlotView, cancelledBy string) error {
	recipient, err := c.recipientFor(ctx, b.UserID())
	if err != nil {
		return err
	}
	return c.enqueue(ctx, tx, TopicBookingCancelled, BookingCancelledEvent{
		Recipient:   recipient,
		Class:       classInfoFor(slot, b.BookingDate()),
		BookingID:   b.ID().String(),
		CancelledBy: cancelledBy,
	})
}

func (c *BookingCommand) enqueue(ctx context.Context, tx db.DBTX, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "failed to encode notification payload")
	}
	return c.outbox.CreateJob(ctx, tx, topic, payload, c.clock.Now())
}
