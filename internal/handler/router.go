package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wave-studio-api/internal/handler/api"
	"wave-studio-api/internal/handler/middleware"
	"wave-studio-api/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	slotsHandler *api.SlotsHandler,
	bookingHandler *api.BookingHandler,
	waitlistHandler *api.WaitlistHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, slotsHandler, bookingHandler, waitlistHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	slotsHandler *api.SlotsHandler,
	bookingHandler *api.BookingHandler,
	waitlistHandler *api.WaitlistHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/slots", Handler: slotsHandler.GetSlotsForDate},
			{Method: http.MethodGet, Path: "/slots/schedule", Handler: slotsHandler.GetSchedule},
			{Method: http.MethodGet, Path: "/slots/:id", Handler: slotsHandler.GetSlot},
			{Method: http.MethodGet, Path: "/availability", Handler: slotsHandler.GetDatesAvailability},
			{Method: http.MethodGet, Path: "/availability/check", Handler: slotsHandler.CheckAvailability},
			{Method: http.MethodGet, Path: "/waitlist/count", Handler: slotsHandler.GetWaitlistCount},
			{Method: http.MethodGet, Path: "/instructors", Handler: slotsHandler.GetInstructors},
		})

		authed := apiGroup.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			bookings := authed.Group("/bookings")
			{
				addRoutes(bookings, []route{
					{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateBooking},
					{Method: http.MethodGet, Path: "", Handler: bookingHandler.GetUserBookings},
					{Method: http.MethodGet, Path: "/next", Handler: bookingHandler.GetNextBooking},
					{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
					{Method: http.MethodDelete, Path: "/:id", Handler: bookingHandler.CancelBooking},
				})
			}

			addRoutes(authed, []route{
				{Method: http.MethodGet, Path: "/me/stats", Handler: bookingHandler.GetMyStats},
			})

			waitlist := authed.Group("/waitlist")
			{
				addRoutes(waitlist, []route{
					{Method: http.MethodPost, Path: "", Handler: waitlistHandler.JoinWaitlist},
					{Method: http.MethodGet, Path: "", Handler: waitlistHandler.GetUserWaitlist},
					{Method: http.MethodDelete, Path: "/:id", Handler: waitlistHandler.LeaveWaitlist},
					{Method: http.MethodPost, Path: "/:id/confirm", Handler: waitlistHandler.ConfirmSpot},
				})
			}
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/bookings", Handler: adminHandler.GetBookings},
				{Method: http.MethodDelete, Path: "/bookings/:id", Handler: adminHandler.CancelBooking},
				{Method: http.MethodDelete, Path: "/bookings/:id/permanent", Handler: adminHandler.DeleteBooking},
				{Method: http.MethodGet, Path: "/waitlist", Handler: adminHandler.GetWaitlist},
				{Method: http.MethodGet, Path: "/stats", Handler: adminHandler.GetStats},
				{Method: http.MethodGet, Path: "/payments", Handler: adminHandler.GetPayments},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
