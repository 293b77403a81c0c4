// Package config loads server and CLI configuration from a TOML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/generic"
	"github.com/warp/cashflow-engine/service"
	"github.com/warp/cashflow-engine/store"
	"github.com/warp/cashflow-engine/store/memory"
	"github.com/warp/cashflow-engine/store/sqlstore"
)

// Config holds all configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Collisions CollisionsConfig `toml:"collisions"`
	Alerts     AlertsConfig     `toml:"alerts"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           string   `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	StaticDir      string   `toml:"static_dir,omitempty"`
}

// DatabaseConfig selects the record store. Driver is "memory", "sqlite3" or
// "postgres".
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// ForecastConfig holds forecast defaults.
type ForecastConfig struct {
	HorizonDays       int     `toml:"horizon_days"`
	MaxHorizonDays    int     `toml:"max_horizon_days"`
	SafetyBuffer      float64 `toml:"safety_buffer"`
	SafeToSpendWindow int     `toml:"safe_to_spend_window"`
	NetTransfers      bool    `toml:"net_transfers"`
	Timezone          string  `toml:"timezone,omitempty"`
}

// CollisionsConfig tunes bill collision severity.
type CollisionsConfig struct {
	MinBillsForWarning  int     `toml:"min_bills_for_warning"`
	MinBillsForCritical int     `toml:"min_bills_for_critical"`
	CriticalAmount      float64 `toml:"critical_amount"`
}

// AlertsConfig schedules the alert job.
type AlertsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // standard 5-field cron
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "./data/cashflow.db",
		},
		Forecast: ForecastConfig{
			HorizonDays:       60,
			MaxHorizonDays:    service.DefaultMaxHorizonDays,
			SafetyBuffer:      500,
			SafeToSpendWindow: cashflow.DefaultSafeToSpendWindow,
		},
		Collisions: CollisionsConfig{
			MinBillsForWarning:  2,
			MinBillsForCritical: 4,
			CriticalAmount:      1000,
		},
		Alerts: AlertsConfig{
			Enabled:  true,
			Schedule: "0 7 * * *",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file at path, falling back to defaults when path is
// empty or the file does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config as TOML.
func Save(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("CASHFLOW_PORT", c.Server.Port)
	c.Database.Driver = getEnv("CASHFLOW_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("CASHFLOW_DB_DSN", c.Database.DSN)
	c.Log.Level = getEnv("CASHFLOW_LOG_LEVEL", c.Log.Level)

	if v, ok := os.LookupEnv("CASHFLOW_SAFETY_BUFFER"); ok {
		buf, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &generic.ConfigError{Field: "CASHFLOW_SAFETY_BUFFER", Value: v, Err: err}
		}
		c.Forecast.SafetyBuffer = buf
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// Validate rejects settings the engine or server cannot run with.
func (c Config) Validate() error {
	if _, err := c.SafetyBufferAmount(); err != nil {
		return err
	}
	if c.Forecast.HorizonDays < 1 {
		return &generic.ConfigError{Field: "forecast.horizon_days", Value: strconv.Itoa(c.Forecast.HorizonDays), Err: generic.ErrInvalidHorizon}
	}
	if c.Forecast.MaxHorizonDays < c.Forecast.HorizonDays {
		return &generic.ConfigError{Field: "forecast.max_horizon_days", Value: strconv.Itoa(c.Forecast.MaxHorizonDays),
			Err: errors.New("must not be below horizon_days")}
	}
	if c.Forecast.SafeToSpendWindow < 0 {
		return &generic.ConfigError{Field: "forecast.safe_to_spend_window", Value: strconv.Itoa(c.Forecast.SafeToSpendWindow),
			Err: errors.New("must not be negative")}
	}
	if _, err := c.Location(); err != nil {
		return &generic.ConfigError{Field: "forecast.timezone", Value: c.Forecast.Timezone, Err: err}
	}

	switch strings.ToLower(c.Database.Driver) {
	case "memory", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return &generic.ConfigError{Field: "database.driver", Value: c.Database.Driver, Err: errors.New("unsupported driver")}
	}

	col := c.Collisions
	if col.MinBillsForWarning < 2 {
		return &generic.ConfigError{Field: "collisions.min_bills_for_warning", Value: strconv.Itoa(col.MinBillsForWarning),
			Err: errors.New("a collision needs at least 2 bills")}
	}
	if col.MinBillsForCritical < col.MinBillsForWarning {
		return &generic.ConfigError{Field: "collisions.min_bills_for_critical", Value: strconv.Itoa(col.MinBillsForCritical),
			Err: errors.New("must not be below min_bills_for_warning")}
	}
	if _, err := generic.AmountFromFloat(col.CriticalAmount); err != nil || col.CriticalAmount <= 0 {
		return &generic.ConfigError{Field: "collisions.critical_amount", Value: formatFloat(col.CriticalAmount),
			Err: errors.New("must be a positive number")}
	}

	if c.Alerts.Enabled {
		if _, err := cron.ParseStandard(c.Alerts.Schedule); err != nil {
			return &generic.ConfigError{Field: "alerts.schedule", Value: c.Alerts.Schedule, Err: err}
		}
	}
	return nil
}

// SafetyBufferAmount converts the configured buffer and checks it is positive.
func (c Config) SafetyBufferAmount() (generic.Amount, error) {
	buf, err := generic.AmountFromFloat(c.Forecast.SafetyBuffer)
	if err != nil {
		return generic.Amount{}, &generic.ConfigError{Field: "forecast.safety_buffer", Value: formatFloat(c.Forecast.SafetyBuffer), Err: err}
	}
	if err := cashflow.ValidateSafetyBuffer(buf); err != nil {
		return generic.Amount{}, err
	}
	return buf, nil
}

// Thresholds converts the collision settings.
func (c Config) Thresholds() cashflow.CollisionThresholds {
	t := cashflow.CollisionThresholds{
		MinBillsForWarning:  c.Collisions.MinBillsForWarning,
		MinBillsForCritical: c.Collisions.MinBillsForCritical,
	}
	if amt, err := generic.AmountFromFloat(c.Collisions.CriticalAmount); err == nil {
		t.CriticalAmount = amt
	}
	return t
}

// Settings converts the forecast section into service defaults.
func (c Config) Settings() (service.Settings, error) {
	buf, err := c.SafetyBufferAmount()
	if err != nil {
		return service.Settings{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return service.Settings{}, &generic.ConfigError{Field: "forecast.timezone", Value: c.Forecast.Timezone, Err: err}
	}
	return service.Settings{
		HorizonDays:       c.Forecast.HorizonDays,
		MaxHorizonDays:    c.Forecast.MaxHorizonDays,
		SafetyBuffer:      buf,
		SafeToSpendWindow: c.Forecast.SafeToSpendWindow,
		NetTransfers:      c.Forecast.NetTransfers,
		Thresholds:        c.Thresholds(),
		Location:          loc,
		Parallel:          true,
	}, nil
}

// Location returns the timezone dates are pinned to. Empty means local time.
func (c Config) Location() (*time.Location, error) {
	if c.Forecast.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Forecast.Timezone)
}

// OpenStore opens the record store selected by the database section.
func OpenStore(d DatabaseConfig) (store.Store, error) {
	if strings.EqualFold(d.Driver, "memory") {
		return memory.New(), nil
	}
	if dir := filepath.Dir(d.DSN); strings.HasPrefix(strings.ToLower(d.Driver), "sqlite") && d.DSN != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}
	return sqlstore.Open(strings.ToLower(d.Driver), d.DSN)
}

// NewLogger builds the process logger from the log settings.
func NewLogger(c LogConfig) *logrus.Logger {
	log := logrus.New()
	if strings.EqualFold(c.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
