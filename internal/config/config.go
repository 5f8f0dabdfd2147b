// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting of the server process.
type Config struct {
	Port         int    `env:"PORT"           envDefault:"8080"`
	DBPath       string `env:"DB_PATH"        envDefault:"./data/stellarsave.db"`
	LedgerDBPath string `env:"LEDGER_DB_PATH" envDefault:"./data/ledger.db"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL"  envDefault:"24h"`

	// CustodyAddress is the ledger account holding pooled contributions.
	CustodyAddress string `env:"CUSTODY_ADDRESS"  envDefault:"custody"`
	// OperatorAddress is the principal the payout scheduler acts as.
	OperatorAddress string `env:"OPERATOR_ADDRESS" envDefault:"operator"`

	// SchedulerInterval is how often due payouts are run; zero disables the
	// scheduler.
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// OTELEndpoint is the OTLP/HTTP collector URL spans are exported to.
	// Tracing stays off while it is empty.
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.CustodyAddress == "" {
		errs = append(errs, errors.New("CUSTODY_ADDRESS must not be empty"))
	}
	if c.CustodyAddress == c.OperatorAddress {
		errs = append(errs, errors.New("CUSTODY_ADDRESS and OPERATOR_ADDRESS must differ"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.SchedulerInterval < 0 {
		errs = append(errs, errors.New("SCHEDULER_INTERVAL must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Ledger holds the settings of the ledger maintenance commands, which do not
// need the server's secrets.
type Ledger struct {
	LedgerDBPath string `env:"LEDGER_DB_PATH" envDefault:"./data/ledger.db"`
}

// LoadLedger parses the ledger settings from the environment.
func LoadLedger() (Ledger, error) {
	var cfg Ledger
	if err := env.Parse(&cfg); err != nil {
		return Ledger{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
