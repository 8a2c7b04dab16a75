package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/paygate/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	AppEnv          string        `env:"APP_ENV" envDefault:"production"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// SettingsFromDB overlays rows of the settings table on the env values.
	SettingsFromDB bool `env:"APP_SETTINGS_FROM_DB" envDefault:"true"`

	Postgres config.PostgresConfig
	PayPal   config.PayPalConfig
	Shop     config.ShopConfig
	Redis    config.RedisConfig
}
