//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"wave-studio-api/internal/domain/booking"
	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/usecase/commands"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

// tuesdaySlot is bookable on 2026-02-10, which falls on a Tuesday.
func tuesdaySlot(capacity int) queries.SlotView {
	return queries.SlotView{
		ID:              uuid.New(),
		InstructorID:    uuid.New(),
		InstructorName:  "Mara",
		DayOfWeek:       2,
		StartTime:       "09:30",
		DurationMinutes: 60,
		ClassType:       "reformer",
		MaxCapacity:     capacity,
		PriceCents:      2500,
		IsActive:        true,
	}
}

const tuesday = "2026-02-10"

func TestCreateSlotBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("books an open spot", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(2)
		env.store.addSlot(slot)
		userID := uuid.New()
		env.store.addProfile(userID, "Ana", "ana@example.com")

		view, err := env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", view.Status)
		assert.Equal(t, tuesday, view.BookingDate)
		assert.Equal(t, 2500, view.AmountPaidCents)
		assert.Equal(t, "reformer", view.ClassType)

		require.Len(t, env.store.jobs, 1)
		assert.Equal(t, commands.TopicBookingCreated, env.store.jobs[0].Topic)
		assert.Equal(t, testNow, env.store.jobs[0].RunAt, "jobs are due at the injected clock's now")

		var event commands.BookingCreatedEvent
		require.NoError(t, json.Unmarshal(env.store.jobs[0].Payload, &event))
		assert.Equal(t, "Ana", event.Recipient.Name)
		assert.Equal(t, view.ID.String(), event.BookingID)
		assert.Equal(t, 2500, event.AmountPaidCents)

		assert.Equal(t, []string{commands.FeedBookingCreated}, env.store.feedEvents)
	})

	t.Run("rejects when capacity is reached", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(2)
		env.store.addSlot(slot)

		for i := 0; i < 2; i++ {
			_, err := env.cmd.CreateSlotBooking(ctx, uuid.New(), slot.ID, tuesday)
			require.NoError(t, err)
		}

		_, err := env.cmd.CreateSlotBooking(ctx, uuid.New(), slot.ID, tuesday)
		assert.ErrorIs(t, err, commands.ErrSlotFull)
	})

	t.Run("same slot on another date has its own capacity", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(1)
		env.store.addSlot(slot)

		_, err := env.cmd.CreateSlotBooking(ctx, uuid.New(), slot.ID, tuesday)
		require.NoError(t, err)

		_, err = env.cmd.CreateSlotBooking(ctx, uuid.New(), slot.ID, "2026-02-17")
		assert.NoError(t, err, "next week's occurrence is independent")
	})

	t.Run("rejects a duplicate active booking", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(5)
		env.store.addSlot(slot)
		userID := uuid.New()

		_, err := env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		require.NoError(t, err)

		_, err = env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		assert.ErrorIs(t, err, commands.ErrDuplicateBooking)
	})

	t.Run("a full slot wins over the duplicate check", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(1)
		env.store.addSlot(slot)
		userID := uuid.New()

		_, err := env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		require.NoError(t, err)

		_, err = env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		assert.ErrorIs(t, err, commands.ErrSlotFull,
			"the holder of the last spot is told the slot is full, not that they already booked")
	})

	t.Run("allows rebooking after cancellation", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(5)
		env.store.addSlot(slot)
		userID := uuid.New()

		view, err := env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		require.NoError(t, err)
		require.NoError(t, env.cmd.CancelBooking(ctx, userID, view.ID))

		_, err = env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		assert.NoError(t, err)
	})

	t.Run("rejects a date on the wrong weekday", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(5)
		env.store.addSlot(slot)

		_, err := env.cmd.CreateSlotBooking(ctx, uuid.New(), slot.ID, "2026-02-11")
		assert.ErrorIs(t, err, commands.ErrInvalidBookingDate)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(5)
		env.store.addSlot(slot)

		_, err := env.cmd.CreateSlotBooking(ctx, uuid.New(), slot.ID, "02/10/2026")
		assert.ErrorIs(t, err, commands.ErrInvalidBookingDate)
	})

	t.Run("rejects unknown and inactive slots", func(t *testing.T) {
		env := newTestEnv(testNow)
		inactive := tuesdaySlot(5)
		inactive.IsActive = false
		env.store.addSlot(inactive)

		_, err := env.cmd.CreateSlotBooking(ctx, uuid.New(), uuid.New(), tuesday)
		assert.ErrorIs(t, err, commands.ErrSlotNotFound)

		_, err = env.cmd.CreateSlotBooking(ctx, uuid.New(), inactive.ID, tuesday)
		assert.ErrorIs(t, err, commands.ErrSlotNotFound)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels and notifies", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(2)
		env.store.addSlot(slot)
		userID := uuid.New()

		view, err := env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		require.NoError(t, err)

		require.NoError(t, env.cmd.CancelBooking(ctx, userID, view.ID))

		stored := env.store.bookings[view.ID]
		assert.Equal(t, booking.StatusCancelled, stored.Status())

		topics := env.store.jobTopics()
		assert.Equal(t, []string{commands.TopicBookingCreated, commands.TopicBookingCancelled}, topics)

		var event commands.BookingCancelledEvent
		require.NoError(t, json.Unmarshal(env.store.jobs[1].Payload, &event))
		assert.Equal(t, "client", event.CancelledBy)
	})

	t.Run("promotes the head of the waitlist", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(1)
		env.store.addSlot(slot)
		booker := uuid.New()
		waiter := uuid.New()

		view, err := env.cmd.CreateSlotBooking(ctx, booker, slot.ID, tuesday)
		require.NoError(t, err)
		_, err = env.cmd.JoinWaitlist(ctx, waiter, slot.ID, tuesday)
		require.NoError(t, err)

		cancelTime := testNow.Add(30 * time.Minute)
		env.clock.Set(cancelTime)
		require.NoError(t, env.cmd.CancelBooking(ctx, booker, view.ID))

		entry := env.store.entryByUser(waiter)
		require.NotNil(t, entry)
		assert.Equal(t, waitlist.StatusNotified, entry.Status())
		require.NotNil(t, entry.ExpiresAt())
		assert.Equal(t, cancelTime.Add(waitlist.ConfirmationWindow), *entry.ExpiresAt())

		topics := env.store.jobTopics()
		assert.Contains(t, topics, commands.TopicSpotAvailable)
	})

	t.Run("promotes in position order", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(1)
		env.store.addSlot(slot)
		booker := uuid.New()
		first := uuid.New()
		second := uuid.New()

		view, err := env.cmd.CreateSlotBooking(ctx, booker, slot.ID, tuesday)
		require.NoError(t, err)
		_, err = env.cmd.JoinWaitlist(ctx, first, slot.ID, tuesday)
		require.NoError(t, err)
		_, err = env.cmd.JoinWaitlist(ctx, second, slot.ID, tuesday)
		require.NoError(t, err)

		require.NoError(t, env.cmd.CancelBooking(ctx, booker, view.ID))

		assert.Equal(t, waitlist.StatusNotified, env.store.entryByUser(first).Status())
		assert.Equal(t, waitlist.StatusWaiting, env.store.entryByUser(second).Status())
	})

	t.Run("masks another user's booking as not found", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(5)
		env.store.addSlot(slot)
		owner := uuid.New()

		view, err := env.cmd.CreateSlotBooking(ctx, owner, slot.ID, tuesday)
		require.NoError(t, err)

		err = env.cmd.CancelBooking(ctx, uuid.New(), view.ID)
		assert.ErrorIs(t, err, commands.ErrBookingNotFound)
	})

	t.Run("rejects a second cancellation", func(t *testing.T) {
		env := newTestEnv(testNow)
		slot := tuesdaySlot(5)
		env.store.addSlot(slot)
		userID := uuid.New()

		view, err := env.cmd.CreateSlotBooking(ctx, userID, slot.ID, tuesday)
		require.NoError(t, err)
		require.NoError(t, env.cmd.CancelBooking(ctx, userID, view.ID))

		err = env.cmd.CancelBooking(ctx, userID, view.ID)
		assert.ErrorIs(t, err, commands.ErrAlreadyCancelled)
	})
}

func TestAdminCancelBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testNow)
	slot := tuesdaySlot(1)
	env.store.addSlot(slot)
	booker := uuid.New()
	waiter := uuid.New()

	view, err := env.cmd.CreateSlotBooking(ctx, booker, slot.ID, tuesday)
	require.NoError(t, err)
	_, err = env.cmd.JoinWaitlist(ctx, waiter, slot.ID, tuesday)
	require.NoError(t, err)

	require.NoError(t, env.cmd.AdminCancelBooking(ctx, view.ID))

	assert.Equal(t, booking.StatusCancelled, env.store.bookings[view.ID].Status())
	assert.Equal(t, waitlist.StatusNotified, env.store.entryByUser(waiter).Status(),
		"studio cancellation frees the spot for the waitlist too")

	var event commands.BookingCancelledEvent
	require.NoError(t, json.Unmarshal(env.store.jobs[1].Payload, &event))
	assert.Equal(t, "owner", event.CancelledBy)
}

func TestAdminDeleteBooking(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(testNow)
	slot := tuesdaySlot(1)
	env.store.addSlot(slot)
	booker := uuid.New()
	waiter := uuid.New()

	view, err := env.cmd.CreateSlotBooking(ctx, booker, slot.ID, tuesday)
	require.NoError(t, err)
	_, err = env.cmd.JoinWaitlist(ctx, waiter, slot.ID, tuesday)
	require.NoError(t, err)

	require.NoError(t, env.cmd.AdminDeleteBooking(ctx, view.ID))

	assert.NotContains(t, env.store.bookings, view.ID)
	assert.Equal(t, waitlist.StatusWaiting, env.store.entryByUser(waiter).Status(),
		"hard delete sends no offer")
	assert.NotContains(t, env.store.jobTopics(), commands.TopicSpotAvailable)
	assert.Contains(t, env.store.feedEvents, commands.FeedBookingDeleted)

	err = env.cmd.AdminDeleteBooking(ctx, view.ID)
	assert.ErrorIs(t, err, commands.ErrBookingNotFound)
}
