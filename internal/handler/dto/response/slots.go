package response

import (
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type SlotResponse struct {
	ID              uuid.UUID `json:"id"`
	InstructorID    uuid.UUID `json:"instructor_id"`
	InstructorName  string    `json:"instructor_name"`
	DayOfWeek       int       `json:"day_of_week"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	ClassType       string    `json:"class_type"`
	MaxCapacity     int       `json:"max_capacity"`
	PriceCents      int       `json:"price_cents"`
	IsActive        bool      `json:"is_active"`
}

type SlotAvailabilityResponse struct {
	Slot         SlotResponse               `json:"slot"`
	Availability queries.AvailabilityResult `json:"availability"`
}

type InstructorResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Bio      *string   `json:"bio,omitempty"`
	IsActive bool      `json:"is_active"`
}

func FromSlotView(v *queries.SlotView) *SlotResponse {
	var resp SlotResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromSlotViews(views []queries.SlotView) []*SlotResponse {
	result := make([]*SlotResponse, len(views))
	for i := range views {
		result[i] = FromSlotView(&views[i])
	}
	return result
}

func FromSlotAvailabilities(items []queries.SlotAvailability) []*SlotAvailabilityResponse {
	result := make([]*SlotAvailabilityResponse, len(items))
	for i := range items {
		result[i] = &SlotAvailabilityResponse{
			Slot:         *FromSlotView(&items[i].Slot),
			Availability: items[i].Availability,
		}
	}
	return result
}

func FromInstructorViews(views []queries.InstructorView) []*InstructorResponse {
	result := make([]*InstructorResponse, len(views))
	for i := range views {
		var resp InstructorResponse
		_ = copier.Copy(&resp, &views[i])
		result[i] = &resp
	}
	return result
}
