package request

import "github.com/google/uuid"

type JoinWaitlistRequest struct {
	SlotID uuid.UUID `json:"slot_id" binding:"required"`
	Date   string    `json:"date" binding:"required"`
}
