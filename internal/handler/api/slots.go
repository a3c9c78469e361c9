package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	resdto "wave-studio-api/internal/handler/dto/response"
	"wave-studio-api/internal/pkg/dateutil"
	"wave-studio-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SlotsHandler serves the public schedule and availability endpoints. No
// authentication: prospective clients browse the schedule before signing
// up.
type SlotsHandler struct {
	availability *queries.AvailabilityQuery
	slots        *queries.SlotQuery
	waitlist     *queries.WaitlistQuery
}

func NewSlotsHandler(availability *queries.AvailabilityQuery, slots *queries.SlotQuery, waitlist *queries.WaitlistQuery) *SlotsHandler {
	return &SlotsHandler{availability: availability, slots: slots, waitlist: waitlist}
}

// GetSlotsForDate returns the day's classes with live availability.
func (h *SlotsHandler) GetSlotsForDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "date query parameter is required",
		})
		return
	}

	items, err := h.availability.GetAvailableSlotsForDate(c.Request.Context(), date)
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

	c.JSON(http.StatusOK, resdto.FromSlotAvailabilities(items))
}

// GetSchedule returns the weekly slot templates.
func (h *SlotsHandler) GetSchedule(c *gin.Context) {
	instructorID, ok := optionalUUIDQuery(c, "instructor_id")
	if !ok {
		return
	}

	views, err := h.slots.GetScheduleSlots(c.Request.Context(), instructorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotViews(views))
}

// GetDatesAvailability summarizes availability for a set of dates, given
// either dates=d1,d2,... or from=YYYY-MM-DD&days=N (days defaults to 30).
func (h *SlotsHandler) GetDatesAvailability(c *gin.Context) {
	dates, ok := h.datesFromQuery(c)
	if !ok {
		return
	}

	instructorID, ok := optionalUUIDQuery(c, "instructor_id")
	if !ok {
		return
	}

	result, err := h.availability.GetDatesAvailability(c.Request.Context(), dates, instructorID)
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

	c.JSON(http.StatusOK, result)
}

func (h *SlotsHandler) GetSlot(c *gin.Context) {
	slotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid slot ID format",
		})
		return
	}

	view, err := h.slots.GetSlotByID(c.Request.Context(), slotID)
	if err != nil {
		if errors.Is(err, queries.ErrSlotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Slot not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotView(view))
}

// CheckAvailability answers whether one occurrence can still be booked,
// with the live count. The booking form calls this right before submit.
func (h *SlotsHandler) CheckAvailability(c *gin.Context) {
	rawSlotID := c.Query("slot_id")
	date := c.Query("date")
	if rawSlotID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "slot_id and date query parameters are required",
		})
		return
	}
	slotID, err := uuid.Parse(rawSlotID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid slot_id format",
		})
		return
	}

	result, err := h.availability.CheckSlotAvailability(c.Request.Context(), slotID, date)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid date format, expected YYYY-MM-DD",
			})
		case errors.Is(err, queries.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Slot not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWaitlistCount reports how many people are queued for one occurrence,
// shown on slot cards next to the full badge.
func (h *SlotsHandler) GetWaitlistCount(c *gin.Context) {
	rawSlotID := c.Query("slot_id")
	date := c.Query("date")
	if rawSlotID == "" || date == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "slot_id and date query parameters are required",
		})
		return
	}
	slotID, err := uuid.Parse(rawSlotID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid slot_id format",
		})
		return
	}

	count, err := h.waitlist.GetWaitlistCount(c.Request.Context(), slotID, date)
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

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *SlotsHandler) GetInstructors(c *gin.Context) {
	views, err := h.slots.GetInstructors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromInstructorViews(views))
}

const (
	defaultLookaheadDays = 30
	maxLookaheadDays     = 90
)

func (h *SlotsHandler) datesFromQuery(c *gin.Context) ([]string, bool) {
	if raw := c.Query("dates"); raw != "" {
		dates := strings.Split(raw, ",")
		if len(dates) > maxLookaheadDays {
			dates = dates[:maxLookaheadDays]
		}
		return dates, true
	}

	from := c.Query("from")
	if from == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "dates or from query parameter is required",
		})
		return nil, false
	}
	start, err := dateutil.ParseDate(from)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid date format, expected YYYY-MM-DD",
		})
		return nil, false
	}

	days := defaultLookaheadDays
	if rawDays := c.Query("days"); rawDays != "" {
		n, err := strconv.Atoi(rawDays)
		if err != nil || n <= 0 || n > maxLookaheadDays {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "days must be a positive integer up to 90",
			})
			return nil, false
		}
		days = n
	}
	return dateutil.DateRange(start, days), true
}

// optionalUUIDQuery parses an optional uuid query parameter; it writes the
// 400 response itself when the value is malformed.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name + " format",
		})
		return nil, false
	}
	return &id, true
}
