// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	PG          PGConfig
	Otel        OtelConfig
	Circulation CirculationConfig
}

type AppConfig struct {
	Env     string `env:"APP_ENV" env-default:"dev"`
	Version string `env:"VERSION" env-default:"dev"`
}

type HTTPConfig struct {
	Port         string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type PGConfig struct {
	DSN             string        `env:"DATABASE_URL" env-required:"true"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" env-default:"2"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
}

type OtelConfig struct {
	// Endpoint is host:port of an OTLP/HTTP collector. Tracing is
	// disabled when empty.
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
	Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"true"`
}

type CirculationConfig struct {
	// LoanPeriodDays is added to the borrow date to compute the due date.
	LoanPeriodDays int `env:"LOAN_PERIOD_DAYS" env-default:"14"`

	// RegistrationRate limits new user registrations per minute.
	RegistrationRatePerMinute int `env:"REGISTRATION_RATE_PER_MINUTE" env-default:"5"`
	RegistrationBurst         int `env:"REGISTRATION_BURST" env-default:"5"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.Circulation.LoanPeriodDays < 1 {
		return Config{}, fmt.Errorf("LOAN_PERIOD_DAYS must be at least 1, got %d", cfg.Circulation.LoanPeriodDays)
	}
	return cfg, nil
}
