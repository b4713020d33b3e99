package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"blupr/internal/engine"
)

// Config centraliza la configuración del servicio y las constantes del motor.
type Config struct {
	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL          string `env:"DATABASE_URL"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`
	SessionTTLHours      int    `env:"SESSION_TTL_HOURS" envDefault:"72"`
	LoginMaxAttempts     int    `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindowMinutes   int    `env:"LOGIN_WINDOW_MINUTES" envDefault:"10"`

	Engine EngineConfig
}

// EngineConfig agrupa las constantes que el motor recibe y nunca define por su cuenta.
type EngineConfig struct {
	CatalogPath      string `env:"CATALOG_PATH"`
	CatalogSize      int    `env:"CATALOG_SIZE" envDefault:"10"`
	OnboardingTarget int    `env:"ONBOARDING_TARGET" envDefault:"0"`
	PulseBatchSize   int    `env:"PULSE_BATCH_SIZE" envDefault:"0"`
	PulseWindow      string `env:"PULSE_WINDOW" envDefault:"calendar_day"`
	PulseTimezone    string `env:"PULSE_TIMEZONE" envDefault:"UTC"`

	FloorHigh    float64 `env:"INTENSITY_FLOOR_HIGH" envDefault:"0.5"`
	FloorMedium  float64 `env:"INTENSITY_FLOOR_MEDIUM" envDefault:"0.6"`
	FloorLow     float64 `env:"INTENSITY_FLOOR_LOW" envDefault:"0.7"`
	FloorDefault float64 `env:"INTENSITY_FLOOR_DEFAULT" envDefault:"0.6"`

	CohortThreshold  float64 `env:"COHORT_THRESHOLD" envDefault:"85"`
	UnlockThreshold  float64 `env:"UNLOCK_THRESHOLD" envDefault:"90"`
	CohortAboveLabel string  `env:"COHORT_ABOVE_LABEL" envDefault:"Kindred"`
	CohortBelowLabel string  `env:"COHORT_BELOW_LABEL" envDefault:"Wanderer"`
	MatchPoolSize    int     `env:"MATCH_POOL_SIZE" envDefault:"200"`
}

var ErrInvalidConfig = errors.New("invalid config")

// LoadConfig carga la configuración desde variables de entorno y la valida.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate se ejecuta una sola vez al arrancar.
func (c *Config) Validate() error {
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("%w: SESSION_TTL_HOURS must be positive", ErrInvalidConfig)
	}
	return c.Engine.Validate()
}

func (e EngineConfig) Validate() error {
	if e.CatalogSize < 0 || e.OnboardingTarget < 0 {
		return fmt.Errorf("%w: catalog size and onboarding target must be >= 0", ErrInvalidConfig)
	}
	if e.CatalogSize > 0 && e.OnboardingTarget > e.CatalogSize {
		return fmt.Errorf("%w: onboarding target %d exceeds catalog size %d", ErrInvalidConfig, e.OnboardingTarget, e.CatalogSize)
	}
	if e.MatchPoolSize <= 0 {
		return fmt.Errorf("%w: MATCH_POOL_SIZE must be positive", ErrInvalidConfig)
	}
	if err := e.Floors().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := e.Classifier().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	gate, err := e.PulseGate()
	if err != nil {
		return err
	}
	if err := gate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (e EngineConfig) Floors() engine.IntensityFloors {
	return engine.IntensityFloors{
		High:    e.FloorHigh,
		Medium:  e.FloorMedium,
		Low:     e.FloorLow,
		Default: e.FloorDefault,
	}
}

func (e EngineConfig) Classifier() engine.Classifier {
	return engine.Classifier{
		CohortThreshold: e.CohortThreshold,
		UnlockThreshold: e.UnlockThreshold,
		CohortAbove:     e.CohortAboveLabel,
		CohortBelow:     e.CohortBelowLabel,
	}
}

func (e EngineConfig) PulseGate() (engine.PulseGate, error) {
	loc, err := time.LoadLocation(e.PulseTimezone)
	if err != nil {
		return engine.PulseGate{}, fmt.Errorf("%w: PULSE_TIMEZONE: %v", ErrInvalidConfig, err)
	}
	return engine.PulseGate{
		BatchSize: e.PulseBatchSize,
		Window:    engine.WindowKind(e.PulseWindow),
		Location:  loc,
	}, nil
}

// Defaults devuelve la configuración del motor sin variables de entorno (CLI y tests).
func Defaults() EngineConfig {
	var e EngineConfig
	_ = env.Parse(&e)
	return e
}
