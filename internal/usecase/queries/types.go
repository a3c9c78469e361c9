package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type AvailabilityResult struct {
	IsAvailable     bool `json:"is_available"`
	SpotsLeft       int  `json:"spots_left"`
	CurrentBookings int  `json:"current_bookings"`
}

type SlotView struct {
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

type SlotAvailability struct {
	Slot         SlotView           `json:"slot"`
	Availability AvailabilityResult `json:"availability"`
}

type DateAvailability struct {
	HasSlots       bool `json:"has_slots"`
	AvailableCount int  `json:"available_count"`
}

type InstructorView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Bio      *string   `json:"bio,omitempty"`
	IsActive bool      `json:"is_active"`
}

type ProfileView struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    *string   `json:"phone,omitempty"`
}

type BookingView struct {
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

// AdminBookingView adds the client's contact details for the back office.
type AdminBookingView struct {
	BookingView
	ClientName  string  `json:"client_name"`
	ClientEmail string  `json:"client_email"`
	ClientPhone *string `json:"client_phone,omitempty"`
}

type WaitlistEntryView struct {
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

type UserStats struct {
	Upcoming        int `json:"upcoming"`
	Completed       int `json:"completed"`
	TotalSpentCents int `json:"total_spent_cents"`
	InstructorCount int `json:"instructor_count"`
}

type AdminStats struct {
	TodayAppointments  int `json:"today_appointments"`
	TodayRevenueCents  int `json:"today_revenue_cents"`
	NewClientsThisWeek int `json:"new_clients_this_week"`
	ShowRatePercent    int `json:"show_rate_percent"`
}

type PaymentStats struct {
	TotalCents   int `json:"total_cents"`
	PaidCents    int `json:"paid_cents"`
	PendingCents int `json:"pending_cents"`
}

type AdminBookingFilter struct {
	Date   *string
	Status *string
	Search *string
	Limit  int
}
