package components

import (
	"wave-studio-api/internal/infra/db"
	"wave-studio-api/internal/infra/readstore"
	"wave-studio-api/internal/infra/repository"
	"wave-studio-api/internal/infra/uow"
	"wave-studio-api/internal/usecase/commands"
	"wave-studio-api/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewSlotReadStore,
			fx.As(new(queries.SlotReader)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReader)),
		),
		fx.Annotate(
			readstore.NewWaitlistReadStore,
			fx.As(new(queries.WaitlistReader)),
		),
		fx.Annotate(
			readstore.NewProfileReadStore,
			fx.As(new(queries.ProfileReader)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			repository.NewBookingRepository,
			fx.As(new(commands.BookingRepository)),
		),
		fx.Annotate(
			repository.NewWaitlistRepository,
			fx.As(new(commands.WaitlistRepository)),
		),
		// The outbox relay worker needs the concrete repository; commands
		// only see the enqueue side.
		repository.NewNotificationRepository,
		fx.Annotate(
			repository.NewNotificationRepository,
			fx.As(new(commands.NotificationEnqueuer)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
