package response

import (
	"time"

	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	SlotID          uuid.UUID `json:"slot_id"`
	BookingDate     string    `json:"booking_date"`
	Status          string    `json:"status"`
	AmountPaidCents int       `json:"amount_paid_cents"`
	ClassType       string    `json:"class_type"`
	StartTime       string    `json:"start_time"`
	InstructorName  string    `json:"instructor_name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AdminBookingResponse struct {
	BookingResponse
	ClientName  string  `json:"client_name"`
	ClientEmail string  `json:"client_email"`
	ClientPhone *string `json:"client_phone,omitempty"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromBookingViews(views []queries.BookingView) []*BookingResponse {
	result := make([]*BookingResponse, len(views))
	for i := range views {
		result[i] = FromBookingView(&views[i])
	}
	return result
}

func FromAdminBookingView(v *queries.AdminBookingView) *AdminBookingResponse {
	var resp AdminBookingResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromAdminBookingViews(views []queries.AdminBookingView) []*AdminBookingResponse {
	result := make([]*AdminBookingResponse, len(views))
	for i := range views {
		result[i] = FromAdminBookingView(&views[i])
	}
	return result
}
