package queries

import (
	"context"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/pkg/errs"

	"github.com/google/uuid"
)

type SlotQuery struct {
	slots SlotReader
}

func NewSlotQuery(slots SlotReader) *SlotQuery {
	return &SlotQuery{slots: slots}
}

// GetScheduleSlots returns every active template, optionally limited to one
// instructor. This is the raw weekly schedule, without availability.
func (q *SlotQuery) GetScheduleSlots(ctx context.Context, instructorID *uuid.UUID) ([]SlotView, error) {
	views, err := q.slots.FindActive(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []SlotView{}
	}
	return views, nil
}

func (q *SlotQuery) GetSlotByID(ctx context.Context, id uuid.UUID) (*SlotView, error) {
	view, err := q.slots.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrSlotNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *SlotQuery) GetInstructors(ctx context.Context) ([]InstructorView, error) {
	views, err := q.slots.FindInstructors(ctx)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []InstructorView{}
	}
	return views, nil
}
