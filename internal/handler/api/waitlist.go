package api

import (
	"errors"
	"net/http"

	reqdto "wave-studio-api/internal/handler/dto/request"
	resdto "wave-studio-api/internal/handler/dto/response"
	"wave-studio-api/internal/handler/middleware"
	"wave-studio-api/internal/usecase/commands"
	"wave-studio-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WaitlistHandler struct {
	command *commands.BookingCommand
	query   *queries.WaitlistQuery
}

func NewWaitlistHandler(command *commands.BookingCommand, query *queries.WaitlistQuery) *WaitlistHandler {
	return &WaitlistHandler{command: command, query: query}
}

func (h *WaitlistHandler) JoinWaitlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.JoinWaitlistRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	entry, err := h.command.JoinWaitlist(c.Request.Context(), userID, req.SlotID, req.Date)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Slot not found",
			})
		case errors.Is(err, commands.ErrInvalidBookingDate):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Date does not fall on this slot's weekday",
			})
		case errors.Is(err, commands.ErrAlreadyWaitlisted):
			c.JSON(http.StatusConflict, gin.H{
				"error": "You are already on this waitlist",
				"code":  "already_waitlisted",
			})
		case errors.Is(err, commands.ErrAlreadyBooked):
			c.JSON(http.StatusConflict, gin.H{
				"error": "You already have a booking for this slot",
				"code":  "already_booked",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromWaitlistEntry(entry))
}

func (h *WaitlistHandler) GetUserWaitlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.query.GetUserWaitlist(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromWaitlistEntryViews(views))
}

func (h *WaitlistHandler) LeaveWaitlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid waitlist entry ID format",
		})
		return
	}

	if err := h.command.LeaveWaitlist(c.Request.Context(), userID, entryID); err != nil {
		switch {
		case errors.Is(err, commands.ErrWaitlistEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Waitlist entry not found",
			})
		case errors.Is(err, commands.ErrWaitlistEntryInactive):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Waitlist entry is no longer active",
				"code":  "entry_inactive",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ConfirmSpot converts an active offer into a booking. An expired offer
// returns 410 and the spot moves on to the next person in line.
func (h *WaitlistHandler) ConfirmSpot(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid waitlist entry ID format",
		})
		return
	}

	view, err := h.command.ConfirmWaitlistSpot(c.Request.Context(), userID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrWaitlistEntryNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Waitlist entry not found",
			})
		case errors.Is(err, commands.ErrWaitlistExpired):
			c.JSON(http.StatusGone, gin.H{
				"error": "Confirmation window has passed",
				"code":  "offer_expired",
			})
		case errors.Is(err, commands.ErrSlotFull):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Slot is fully booked",
				"code":  "slot_full",
			})
		case errors.Is(err, commands.ErrDuplicateBooking):
			c.JSON(http.StatusConflict, gin.H{
				"error": "You already have a booking for this slot",
				"code":  "already_booked",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingView(view))
}
