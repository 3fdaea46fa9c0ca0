// Package config defines the dashboard configuration and its loading layers.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"github.com/okian/prodboard/internal/domain/metrics"
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StoreDriver selects where machine records are read from.
	StoreDriver string `koanf:"store_driver"`

	// DataDir holds one <machine>.csv or <machine>.xlsx file per machine.
	DataDir string `koanf:"data_dir"`

	// DatabaseURL is the Postgres DSN for the postgres driver.
	DatabaseURL string `koanf:"database_url"`

	// Table is the Postgres records table.
	Table string `koanf:"table"`

	// Machines is the default machine selection. Empty means every machine the store lists.
	Machines []string `koanf:"machines"`

	// Timezone is the IANA zone record dates and times are interpreted in.
	Timezone string `koanf:"timezone"`

	// DurationCeiling is the accepted-mean-duration alert ceiling in minutes.
	DurationCeiling float64 `koanf:"duration_ceiling"`

	// RejectionRateCeiling is the rejection-rate alert ceiling in percent.
	RejectionRateCeiling float64 `koanf:"rejection_rate_ceiling"`

	// Shift boundaries as hours of day; each range is [start, end).
	ShiftMorningStart   int `koanf:"shift_morning_start"`
	ShiftMorningEnd     int `koanf:"shift_morning_end"`
	ShiftAfternoonStart int `koanf:"shift_afternoon_start"`
	ShiftAfternoonEnd   int `koanf:"shift_afternoon_end"`
}

// New creates a Config holding the defaults.
func New() *Config {
	d := metrics.DefaultConfig()
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		StoreDriver:          DriverFile,
		DataDir:              "data",
		Table:                "production_records",
		Timezone:             "UTC",
		DurationCeiling:      d.DurationCeiling,
		RejectionRateCeiling: d.RejectionRateCeiling,
		ShiftMorningStart:    d.Shifts.MorningStart,
		ShiftMorningEnd:      d.Shifts.MorningEnd,
		ShiftAfternoonStart:  d.Shifts.AfternoonStart,
		ShiftAfternoonEnd:    d.Shifts.AfternoonEnd,
	}
}

// MetricsConfig converts the thresholds and shift bounds for the metrics engine.
func (c *Config) MetricsConfig() metrics.Config {
	return metrics.Config{
		DurationCeiling:      c.DurationCeiling,
		RejectionRateCeiling: c.RejectionRateCeiling,
		Shifts: metrics.ShiftBounds{
			MorningStart:   c.ShiftMorningStart,
			MorningEnd:     c.ShiftMorningEnd,
			AfternoonStart: c.ShiftAfternoonStart,
			AfternoonEnd:   c.ShiftAfternoonEnd,
		},
	}
}

// Location resolves Timezone. An empty zone is UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks field combinations the process cannot start with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data_dir must not be empty for the file driver", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url must not be empty for the postgres driver", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := c.MetricsConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// normalize trims list entries and drops blanks.
func (c *Config) normalize() {
	machines := make([]string, 0, len(c.Machines))
	for _, m := range c.Machines {
		if m = strings.TrimSpace(m); m != "" {
			machines = append(machines, m)
		}
	}
	c.Machines = machines
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}
