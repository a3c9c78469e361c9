//go:build unit

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wave-studio-api/internal/handler/api"
	"wave-studio-api/internal/infra"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSlotReader struct {
	queries.SlotReader
	slots       []queries.SlotView
	instructors []queries.InstructorView
}

func (s stubSlotReader) FindByID(_ context.Context, id uuid.UUID) (*queries.SlotView, error) {
	for _, slot := range s.slots {
		if slot.ID == id {
			return &slot, nil
		}
	}
	return nil, infra.WrapRepoErr("slot not found", nil, infra.KindNotFound)
}

func (s stubSlotReader) FindActiveByDay(_ context.Context, dayOfWeek int) ([]queries.SlotView, error) {
	var result []queries.SlotView
	for _, slot := range s.slots {
		if slot.IsActive && slot.DayOfWeek == dayOfWeek {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (s stubSlotReader) FindActive(_ context.Context, instructorID *uuid.UUID) ([]queries.SlotView, error) {
	var result []queries.SlotView
	for _, slot := range s.slots {
		if !slot.IsActive {
			continue
		}
		if instructorID != nil && slot.InstructorID != *instructorID {
			continue
		}
		result = append(result, slot)
	}
	return result, nil
}

func (s stubSlotReader) FindInstructors(_ context.Context) ([]queries.InstructorView, error) {
	return s.instructors, nil
}

type stubBookingReader struct {
	queries.BookingReader
	counts map[string]int
}

func (s stubBookingReader) CountActive(_ context.Context, slotID uuid.UUID, date string) (int, error) {
	return s.counts[queries.CountKey(slotID, date)], nil
}

func (s stubBookingReader) CountActiveByDates(_ context.Context, dates []string) (map[string]int, error) {
	return s.counts, nil
}

type stubWaitlistReader struct {
	queries.WaitlistReader
	counts map[string]int
}

func (s stubWaitlistReader) CountActiveForSlot(_ context.Context, slotID uuid.UUID, date string) (int, error) {
	return s.counts[queries.CountKey(slotID, date)], nil
}

func newSlotsRouter(slots stubSlotReader, bookings stubBookingReader, waitlist stubWaitlistReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := api.NewSlotsHandler(
		queries.NewAvailabilityQuery(slots, bookings),
		queries.NewSlotQuery(slots),
		queries.NewWaitlistQuery(waitlist, clock.NewRealClock()),
	)

	r := gin.New()
	r.GET("/api/slots", h.GetSlotsForDate)
	r.GET("/api/slots/schedule", h.GetSchedule)
	r.GET("/api/slots/:id", h.GetSlot)
	r.GET("/api/availability", h.GetDatesAvailability)
	r.GET("/api/availability/check", h.CheckAvailability)
	r.GET("/api/waitlist/count", h.GetWaitlistCount)
	r.GET("/api/instructors", h.GetInstructors)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetSlotsForDate(t *testing.T) {
	slot := queries.SlotView{
		ID:          uuid.New(),
		DayOfWeek:   2,
		StartTime:   "09:30",
		ClassType:   "reformer",
		MaxCapacity: 4,
		IsActive:    true,
	}
	router := newSlotsRouter(
		stubSlotReader{slots: []queries.SlotView{slot}},
		stubBookingReader{counts: map[string]int{queries.CountKey(slot.ID, "2026-02-10"): 3}},
		stubWaitlistReader{},
	)

	t.Run("returns availability for the day", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots?date=2026-02-10")
		require.Equal(t, http.StatusOK, rec.Code)

		var body []struct {
			Slot struct {
				ID        uuid.UUID `json:"id"`
				ClassType string    `json:"class_type"`
			} `json:"slot"`
			Availability queries.AvailabilityResult `json:"availability"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, slot.ID, body[0].Slot.ID)
		assert.Equal(t, "reformer", body[0].Slot.ClassType)
		assert.Equal(t, queries.AvailabilityResult{IsAvailable: true, SpotsLeft: 1, CurrentBookings: 3}, body[0].Availability)
	})

	t.Run("requires the date parameter", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots?date=02-10-2026")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetSchedule(t *testing.T) {
	mine := uuid.New()
	slotMine := queries.SlotView{ID: uuid.New(), InstructorID: mine, DayOfWeek: 2, IsActive: true}
	slotOther := queries.SlotView{ID: uuid.New(), InstructorID: uuid.New(), DayOfWeek: 3, IsActive: true}
	router := newSlotsRouter(
		stubSlotReader{slots: []queries.SlotView{slotMine, slotOther}},
		stubBookingReader{},
		stubWaitlistReader{},
	)

	t.Run("lists all active slots", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots/schedule")
		require.Equal(t, http.StatusOK, rec.Code)

		var body []struct {
			ID uuid.UUID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body, 2)
	})

	t.Run("filters by instructor", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots/schedule?instructor_id="+mine.String())
		require.Equal(t, http.StatusOK, rec.Code)

		var body []struct {
			ID uuid.UUID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, slotMine.ID, body[0].ID)
	})

	t.Run("rejects a malformed instructor id", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots/schedule?instructor_id=nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetDatesAvailability(t *testing.T) {
	slot := queries.SlotView{ID: uuid.New(), DayOfWeek: 2, MaxCapacity: 4, IsActive: true}
	router := newSlotsRouter(
		stubSlotReader{slots: []queries.SlotView{slot}},
		stubBookingReader{counts: map[string]int{queries.CountKey(slot.ID, "2026-02-10"): 4}},
		stubWaitlistReader{},
	)

	t.Run("explicit dates list", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability?dates=2026-02-10,2026-02-11")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]queries.DateAvailability
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, queries.DateAvailability{HasSlots: true, AvailableCount: 0}, body["2026-02-10"],
			"slot is at capacity")
		assert.Equal(t, queries.DateAvailability{}, body["2026-02-11"])
	})

	t.Run("from plus days window", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability?from=2026-02-09&days=3")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]queries.DateAvailability
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body, 3)
		assert.True(t, body["2026-02-10"].HasSlots)
	})

	t.Run("requires dates or from", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an out-of-range window", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability?from=2026-02-09&days=91")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetInstructors(t *testing.T) {
	router := newSlotsRouter(
		stubSlotReader{instructors: []queries.InstructorView{{ID: uuid.New(), Name: "Mara", IsActive: true}}},
		stubBookingReader{},
		stubWaitlistReader{},
	)

	rec := doGet(t, router, "/api/instructors")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Mara", body[0].Name)
}

func TestGetWaitlistCount(t *testing.T) {
	slotID := uuid.New()
	router := newSlotsRouter(
		stubSlotReader{},
		stubBookingReader{},
		stubWaitlistReader{counts: map[string]int{queries.CountKey(slotID, "2026-02-10"): 3}},
	)

	t.Run("returns the queue length", func(t *testing.T) {
		rec := doGet(t, router, "/api/waitlist/count?slot_id="+slotID.String()+"&date=2026-02-10")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 3, body.Count)
	})

	t.Run("requires slot_id and date", func(t *testing.T) {
		rec := doGet(t, router, "/api/waitlist/count?slot_id="+slotID.String())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		rec := doGet(t, router, "/api/waitlist/count?slot_id="+slotID.String()+"&date=garbage")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetSlot(t *testing.T) {
	slot := queries.SlotView{ID: uuid.New(), DayOfWeek: 2, ClassType: "reformer", IsActive: true}
	router := newSlotsRouter(
		stubSlotReader{slots: []queries.SlotView{slot}},
		stubBookingReader{},
		stubWaitlistReader{},
	)

	t.Run("returns the slot", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots/"+slot.ID.String())
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			ID        uuid.UUID `json:"id"`
			ClassType string    `json:"class_type"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, slot.ID, body.ID)
		assert.Equal(t, "reformer", body.ClassType)
	})

	t.Run("unknown slot", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := doGet(t, router, "/api/slots/nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCheckAvailability(t *testing.T) {
	slot := queries.SlotView{ID: uuid.New(), DayOfWeek: 2, MaxCapacity: 4, IsActive: true}
	router := newSlotsRouter(
		stubSlotReader{slots: []queries.SlotView{slot}},
		stubBookingReader{counts: map[string]int{queries.CountKey(slot.ID, "2026-02-10"): 3}},
		stubWaitlistReader{},
	)

	t.Run("reports live availability", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability/check?slot_id="+slot.ID.String()+"&date=2026-02-10")
		require.Equal(t, http.StatusOK, rec.Code)

		var body queries.AvailabilityResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, queries.AvailabilityResult{IsAvailable: true, SpotsLeft: 1, CurrentBookings: 3}, body)
	})

	t.Run("unknown slot", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability/check?slot_id="+uuid.NewString()+"&date=2026-02-10")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("requires both parameters", func(t *testing.T) {
		rec := doGet(t, router, "/api/availability/check?date=2026-02-10")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
