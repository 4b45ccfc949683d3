package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
)

type Config struct {
	Environment  Environment
	Log          Log
	HTTP         HTTPServer
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Database     Database
	Subscription Subscription

	Clubzila Clubzila `envPrefix:"CLUBZILA_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Admin    Admin    `envPrefix:"ADMIN_"`
}

type Clubzila struct {
	BaseApiURL    string        `env:"API_URL" envDefault:"https://clubzila.com/api"`
	APIKey        string        `env:"API_KEY"`
	WebhookSecret string        `env:"WEBHOOK_SECRET"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// signup defaults sent when a visitor has no account yet
	DefaultPassword string `env:"DEFAULT_PASSWORD" envDefault:"12345678"`
	CountryCode     string `env:"COUNTRY_CODE" envDefault:"255"`
	ReferredBy      int64  `env:"REFERRED_BY" envDefault:"658767978"`

	Amount            decimal.Decimal `env:"AMOUNT" envDefault:"500"`
	Currency          string          `env:"CURRENCY" envDefault:"TZS"`
	CheckSubscription bool            `env:"CHECK_SUBSCRIPTION" envDefault:"false"`
}

type Redis struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	PageTTL  time.Duration `env:"PAGE_TTL" envDefault:"10m"`
}

type Admin struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite, mysql, postgres
	URL    string `env:"DATABASE_URL" envDefault:"creator-funnel.db"`
}

type Subscription struct {
	PendingTTL        time.Duration `env:"PENDING_TTL" envDefault:"30m"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
	RateLimit         float64       `env:"SUBSCRIBE_RATE_LIMIT" envDefault:"5"` // requests per second per client
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (h HTTPServer) Addr() string {
	return h.Host + ":" + h.Port
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
