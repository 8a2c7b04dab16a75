package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

const (
	PayPalModeSandbox = "sandbox"
	PayPalModeLive    = "live"
)

// PayPalConfig holds both credential pairs; Mode picks which one is used.
type PayPalConfig struct {
	Mode            string        `env:"PAYPAL_MODE" envDefault:"live"`
	ClientID        string        `env:"PAYPAL_CLIENT_ID" envDefault:""`
	Secret          string        `env:"PAYPAL_SECRET" envDefault:""`
	SandboxClientID string        `env:"PAYPAL_SANDBOX_CLIENT_ID" envDefault:""`
	SandboxSecret   string        `env:"PAYPAL_SANDBOX_SECRET" envDefault:""`
	Timeout         time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"20s"`
	// BaseURL overrides the API host picked from Mode.
	BaseURL string `env:"PAYPAL_BASE_URL" envDefault:""`
}

func (c PayPalConfig) Sandbox() bool {
	return c.Mode == PayPalModeSandbox
}

// ShopConfig carries the store-wide settings the checkout flow reads.
// Values can be overridden at runtime by rows in the settings table.
type ShopConfig struct {
	AppName                  string  `env:"APP_NAME" envDefault:"Paygate"`
	PublicURL                string  `env:"APP_URL" envDefault:"http://localhost:8080"`
	HomePath                 string  `env:"APP_HOME_PATH" envDefault:"/home"`
	ServerLimitAfterPurchase int64   `env:"SERVER_LIMIT_AFTER_IRL_PURCHASE" envDefault:"0"`
	ReferralMode             string  `env:"REFERRAL_MODE" envDefault:"off"`
	AlwaysGiveCommission     bool    `env:"REFERRAL_ALWAYS_GIVE_COMMISSION" envDefault:"false"`
	ReferralPercentage       int     `env:"REFERRAL_PERCENTAGE" envDefault:"0"`
	CreditsDisplayName       string  `env:"CREDITS_DISPLAY_NAME" envDefault:"Credits"`
	SalesTaxPercent          float64 `env:"SALES_TAX" envDefault:"0"`
}

type RedisConfig struct {
	// Addr empty disables the redis event publisher.
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Channel  string `env:"REDIS_EVENTS_CHANNEL" envDefault:"payments.events"`
}
