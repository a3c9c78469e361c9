package bootstrap

import (
	"wave-studio-api/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.RedisConfig { return cfg.Redis },
		func(cfg config.Config) config.AMQPConfig { return cfg.AMQP },
		func(cfg config.Config) config.OutboxConfig { return cfg.Outbox },
	),
)
