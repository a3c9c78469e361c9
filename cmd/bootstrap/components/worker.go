package components

import (
	"context"

	"wave-studio-api/internal/infra/outbox"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		outbox.NewWorker,
	),
	fx.Invoke(startOutboxWorker),
)

func startOutboxWorker(lc fx.Lifecycle, worker *outbox.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			worker.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			worker.Stop()
			return nil
		},
	})
}
