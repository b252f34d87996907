// Package config loads TrueFund settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"truefund.org/internal/fund"
)

// Config is the full runtime configuration of the API and its tooling.
type Config struct {
	HTTPAddr string `env:"TRUEFUND_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"TRUEFUND_GRPC_ADDR" envDefault:":9090"`

	PGDSN       string `env:"TRUEFUND_PG_DSN"`
	AutoMigrate bool   `env:"TRUEFUND_AUTO_MIGRATE" envDefault:"false"`

	AuthSecret  string   `env:"TRUEFUND_AUTH_SECRET,required"`
	AdminEmails []string `env:"TRUEFUND_ADMIN_EMAILS" envSeparator:","`

	LivesFormula     string `env:"TRUEFUND_LIVES_FORMULA" envDefault:"donors"`
	LivesPerCampaign int64  `env:"TRUEFUND_LIVES_PER_CAMPAIGN" envDefault:"1"`

	RateBurst      int      `env:"TRUEFUND_RATE_BURST" envDefault:"20"`
	RatePerSec     int      `env:"TRUEFUND_RATE_PER_SEC" envDefault:"10"`
	MaxBodyBytes   int64    `env:"TRUEFUND_MAX_BODY_BYTES" envDefault:"1048576"`
	AllowedOrigins []string `env:"TRUEFUND_ALLOWED_ORIGINS" envSeparator:","`

	ReadTimeout     time.Duration `env:"TRUEFUND_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"TRUEFUND_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"TRUEFUND_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"TRUEFUND_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the process environment and validates the result.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AuthSecret) == "" {
		errs = append(errs, errors.New("TRUEFUND_AUTH_SECRET must not be blank"))
	}
	if _, err := c.Lives(); err != nil {
		errs = append(errs, err)
	}
	if c.RateBurst <= 0 || c.RatePerSec <= 0 {
		errs = append(errs, errors.New("rate limit burst and rate must be > 0"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("TRUEFUND_MAX_BODY_BYTES must be > 0"))
	}
	return errors.Join(errs...)
}

// Lives returns the configured lives-impacted formula.
func (c Config) Lives() (fund.LivesFormula, error) {
	return fund.ParseLivesFormula(c.LivesFormula, c.LivesPerCampaign)
}
