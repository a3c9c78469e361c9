package commands

import "time"

// Outbox topics. The external dispatcher routes each topic to its email
// and SMS templates.
const (
	TopicBookingCreated   = "booking_created"
	TopicBookingCancelled = "booking_cancelled"
	TopicSpotAvailable    = "spot_available"
)

// Feed event types published on the booking change channel.
const (
	FeedBookingCreated   = "booking_created"
	FeedBookingCancelled = "booking_cancelled"
	FeedBookingDeleted   = "booking_deleted"
)

type Recipient struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

type ClassInfo struct {
	ClassType      string `json:"class_type"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	InstructorName string `json:"instructor_name"`
}

type BookingCreatedEvent struct {
	Recipient       Recipient `json:"recipient"`
	Class           ClassInfo `json:"class"`
	BookingID       string    `json:"booking_id"`
	AmountPaidCents int       `json:"amount_paid_cents"`
}

type BookingCancelledEvent struct {
	Recipient   Recipient `json:"recipient"`
	Class       ClassInfo `json:"class"`
	BookingID   string    `json:"booking_id"`
	CancelledBy string    `json:"cancelled_by"` // "client" or "owner"
}

// SpotAvailableEvent tells a promoted waitlist user their spot is held
// until ExpiresAt.
type SpotAvailableEvent struct {
	Recipient Recipient `json:"recipient"`
	Class     ClassInfo `json:"class"`
	EntryID   string    `json:"entry_id"`
	Position  int       `json:"position"`
	ExpiresAt time.Time `json:"expires_at"`
}
