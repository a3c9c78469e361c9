package api

import (
	"errors"
	"net/http"
	"strconv"

	resdto "wave-studio-api/internal/handler/dto/response"
	"wave-studio-api/internal/usecase/commands"
	"wave-studio-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	command       *commands.BookingCommand
	bookingQuery  *queries.BookingQuery
	waitlistQuery *queries.WaitlistQuery
	statsQuery    *queries.StatsQuery
}

func NewAdminHandler(
	command *commands.BookingCommand,
	bookingQuery *queries.BookingQuery,
	waitlistQuery *queries.WaitlistQuery,
	statsQuery *queries.StatsQuery,
) *AdminHandler {
	return &AdminHandler{
		command:       command,
		bookingQuery:  bookingQuery,
		waitlistQuery: waitlistQuery,
		statsQuery:    statsQuery,
	}
}

func (h *AdminHandler) GetBookings(c *gin.Context) {
	filter := queries.AdminBookingFilter{
		Date:   optionalStringQuery(c, "date"),
		Status: optionalStringQuery(c, "status"),
		Search: optionalStringQuery(c, "search"),
	}
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit must be a positive integer",
			})
			return
		}
		filter.Limit = limit
	}

	views, err := h.bookingQuery.GetAdminBookings(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid date format, expected YYYY-MM-DD",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromAdminBookingViews(views))
}

// CancelBooking cancels on the client's behalf; the freed spot still goes
// through waitlist promotion.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return
	}

	if err := h.command.AdminCancelBooking(c.Request.Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
		case errors.Is(err, commands.ErrAlreadyCancelled):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Booking is already cancelled",
				"code":  "already_cancelled",
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

func (h *AdminHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return
	}

	if err := h.command.AdminDeleteBooking(c.Request.Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
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

// GetWaitlist lists queue entries, either across dates or for one slot
// occurrence when slot_id and date are both given.
func (h *AdminHandler) GetWaitlist(c *gin.Context) {
	var views []queries.WaitlistEntryView
	var err error

	if rawSlotID := c.Query("slot_id"); rawSlotID != "" {
		slotID, parseErr := uuid.Parse(rawSlotID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid slot_id format",
			})
			return
		}
		date := c.Query("date")
		if date == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "date is required when filtering by slot_id",
			})
			return
		}
		views, err = h.waitlistQuery.GetWaitlistForSlot(c.Request.Context(), slotID, date)
	} else {
		views, err = h.waitlistQuery.GetAdminWaitlist(c.Request.Context(), optionalStringQuery(c, "date"))
	}
	if err != nil {
		if errors.Is(err, queries.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid date format, expected YYYY-MM-DD",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromWaitlistEntryViews(views))
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsQuery.GetAdminStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) GetPayments(c *gin.Context) {
	stats, err := h.statsQuery.GetPaymentStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func optionalStringQuery(c *gin.Context, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}
