package response

import (
	"time"

	"wave-studio-api/internal/domain/waitlist"
	"wave-studio-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type WaitlistEntryResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	SlotID         uuid.UUID  `json:"slot_id"`
	BookingDate    string     `json:"booking_date"`
	Position       int        `json:"position"`
	Status         string     `json:"status"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClassType      string     `json:"class_type"`
	StartTime      string     `json:"start_time"`
	InstructorName string     `json:"instructor_name"`
	ClientName     string     `json:"client_name,omitempty"`
	ClientEmail    string     `json:"client_email,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// JoinWaitlistResponse is the acknowledgement for a fresh join; class
// details are not re-fetched here.
type JoinWaitlistResponse struct {
	ID          uuid.UUID `json:"id"`
	SlotID      uuid.UUID `json:"slot_id"`
	BookingDate string    `json:"booking_date"`
	Position    int       `json:"position"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func FromWaitlistEntryView(v *queries.WaitlistEntryView) *WaitlistEntryResponse {
	var resp WaitlistEntryResponse
	_ = copier.Copy(&resp, v)
	return &resp
}

func FromWaitlistEntryViews(views []queries.WaitlistEntryView) []*WaitlistEntryResponse {
	result := make([]*WaitlistEntryResponse, len(views))
	for i := range views {
		result[i] = FromWaitlistEntryView(&views[i])
	}
	return result
}

func FromWaitlistEntry(e *waitlist.Entry) *JoinWaitlistResponse {
	return &JoinWaitlistResponse{
		ID:          e.ID(),
		SlotID:      e.SlotID(),
		BookingDate: e.BookingDate(),
		Position:    e.Position(),
		Status:      string(e.Status()),
		CreatedAt:   e.CreatedAt(),
	}
}
