package readstore

import (
	"context"

	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/pkg/pgconv"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
)

const slotColumns = `
	s.id, s.instructor_id, i.name, s.day_of_week,
	to_char(s.start_time, 'HH24:MI'), s.duration_minutes, s.class_type,
	s.max_capacity, s.price_cents, s.is_active
`

type SlotReadStore struct {
	db db.DBTX
}

func NewSlotReadStore(pool db.DBTX) *SlotReadStore {
	return &SlotReadStore{db: pool}
}

func (r *SlotReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SlotView, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM schedule_slots s
		JOIN instructors i ON i.id = s.instructor_id
		WHERE s.id = $1
	`, id)

	view, err := scanSlotView(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("slot not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find slot by ID", err)
	}
	return view, nil
}

// FindActiveByDay returns the active templates for one weekday ordered by
// start time, the order the day's schedule is displayed in.
func (r *SlotReadStore) FindActiveByDay(ctx context.Context, dayOfWeek int) ([]queries.SlotView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+slotColumns+`
		FROM schedule_slots s
		JOIN instructors i ON i.id = s.instructor_id
		WHERE s.day_of_week = $1 AND s.is_active
		ORDER BY s.start_time
	`, dayOfWeek)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find slots by day", err)
	}
	defer rows.Close()

	return collectSlotViews(rows)
}

// FindActive returns every active template, optionally filtered by
// instructor. Used by the batched calendar availability view.
func (r *SlotReadStore) FindActive(ctx context.Context, instructorID *uuid.UUID) ([]queries.SlotView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+slotColumns+`
		FROM schedule_slots s
		JOIN instructors i ON i.id = s.instructor_id
		WHERE s.is_active AND ($1::uuid IS NULL OR s.instructor_id = $1)
		ORDER BY s.day_of_week, s.start_time
	`, pgconv.UUIDPtrToPgtype(instructorID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active slots", err)
	}
	defer rows.Close()

	return collectSlotViews(rows)
}

func (r *SlotReadStore) FindInstructors(ctx context.Context) ([]queries.InstructorView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, bio, is_active
		FROM instructors
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find instructors", err)
	}
	defer rows.Close()

	var result []queries.InstructorView
	for rows.Next() {
		var v queries.InstructorView
		if err := rows.Scan(&v.ID, &v.Name, &v.Bio, &v.IsActive); err != nil {
			return nil, infra.WrapRepoErr("failed to scan instructor row", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate instructor rows", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlotView(row rowScanner) (*queries.SlotView, error) {
	var v queries.SlotView
	err := row.Scan(
		&v.ID, &v.InstructorID, &v.InstructorName, &v.DayOfWeek,
		&v.StartTime, &v.DurationMinutes, &v.ClassType,
		&v.MaxCapacity, &v.PriceCents, &v.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectSlotViews(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]queries.SlotView, error) {
	var result []queries.SlotView
	for rows.Next() {
		view, err := scanSlotView(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan slot row", err)
		}
		result = append(result, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate slot rows", err)
	}
	return result, nil
}
