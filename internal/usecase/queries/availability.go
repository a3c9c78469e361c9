package queries

import (
	"context"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/pkg/dateutil"
	"wave-studio-api/internal/pkg/errs"

	"github.com/google/uuid"
)

// AvailabilityQuery answers "can this occurrence still be booked" and the
// calendar views built on top of that question. Counts always come straight
// from the store; a stale count here is how double-booking starts.
type AvailabilityQuery struct {
	slots    SlotReader
	bookings BookingReader
}

func NewAvailabilityQuery(slots SlotReader, bookings BookingReader) *AvailabilityQuery {
	return &AvailabilityQuery{slots: slots, bookings: bookings}
}

func (q *AvailabilityQuery) CheckSlotAvailability(ctx context.Context, slotID uuid.UUID, date string) (*AvailabilityResult, error) {
	if _, err := dateutil.ParseDate(date); err != nil {
		return nil, errs.Mark(err, ErrInvalidDate)
	}

	slot, err := q.slots.FindByID(ctx, slotID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrSlotNotFound)
		}
		return nil, err
	}

	count, err := q.bookings.CountActive(ctx, slotID, date)
	if err != nil {
		return nil, err
	}

	spotsLeft := slot.MaxCapacity - count
	if spotsLeft < 0 {
		spotsLeft = 0
	}
	return &AvailabilityResult{
		IsAvailable:     count < slot.MaxCapacity,
		SpotsLeft:       spotsLeft,
		CurrentBookings: count,
	}, nil
}

// GetAvailableSlotsForDate lists the day's schedule with live availability,
// using one batched count query for the whole day.
func (q *AvailabilityQuery) GetAvailableSlotsForDate(ctx context.Context, date string) ([]SlotAvailability, error) {
	day, err := dateutil.DayOfWeek(date)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidDate)
	}

	slots, err := q.slots.FindActiveByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return []SlotAvailability{}, nil
	}

	counts, err := q.bookings.CountActiveByDates(ctx, []string{date})
	if err != nil {
		return nil, err
	}

	result := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		count := counts[CountKey(slot.ID, date)]
		spotsLeft := slot.MaxCapacity - count
		if spotsLeft < 0 {
			spotsLeft = 0
		}
		result = append(result, SlotAvailability{
			Slot: slot,
			Availability: AvailabilityResult{
				IsAvailable:     count < slot.MaxCapacity,
				SpotsLeft:       spotsLeft,
				CurrentBookings: count,
			},
		})
	}
	return result, nil
}

// GetDatesAvailability summarizes a set of calendar dates in two queries
// total: one for the slot templates, one batched count over every date. The
// result maps each date to whether it has slots and how many of them still
// have a free spot.
func (q *AvailabilityQuery) GetDatesAvailability(ctx context.Context, dates []string, instructorID *uuid.UUID) (map[string]DateAvailability, error) {
	weekdays := make([]int, len(dates))
	for i, date := range dates {
		day, err := dateutil.DayOfWeek(date)
		if err != nil {
			return nil, errs.Mark(err, ErrInvalidDate)
		}
		weekdays[i] = day
	}

	slots, err := q.slots.FindActive(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	counts, err := q.bookings.CountActiveByDates(ctx, dates)
	if err != nil {
		return nil, err
	}

	byDay := make(map[int][]SlotView)
	for _, slot := range slots {
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slot)
	}

	result := make(map[string]DateAvailability, len(dates))
	for i, date := range dates {
		daySlots := byDay[weekdays[i]]

		available := 0
		for _, slot := range daySlots {
			if counts[CountKey(slot.ID, date)] < slot.MaxCapacity {
				available++
			}
		}
		result[date] = DateAvailability{
			HasSlots:       len(daySlots) > 0,
			AvailableCount: available,
		}
	}
	return result, nil
}
