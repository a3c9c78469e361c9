package components

import (
	"wave-studio-api/internal/infra/feed"
	"wave-studio-api/internal/pkg/clock"
	"wave-studio-api/internal/usecase/commands"
	"wave-studio-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		feed.NewPublisher,
		fx.As(new(commands.ChangeFeed)),
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewAvailabilityQuery,
		queries.NewSlotQuery,
		queries.NewBookingQuery,
		queries.NewWaitlistQuery,
		queries.NewStatsQuery,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommand,
	),
)
