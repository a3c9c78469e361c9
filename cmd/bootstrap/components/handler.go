package components

import (
	"wave-studio-api/internal/handler"
	"wave-studio-api/internal/handler/api"
	"wave-studio-api/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewSlotsHandler,
		api.NewBookingHandler,
		api.NewWaitlistHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
