package bootstrap

import (
	"context"

	"wave-studio-api/internal/infra/outbox"
	"wave-studio-api/internal/pkg/config"

	"go.uber.org/fx"
)

var AMQPModule = fx.Module("amqp",
	fx.Provide(
		NewAMQPPublisher,
	),
)

func NewAMQPPublisher(lc fx.Lifecycle, cfg config.AMQPConfig) (outbox.Publisher, error) {
	publisher, err := outbox.NewAMQPPublisher(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}
