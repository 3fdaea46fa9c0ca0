package config

import "errors"

var (
	// ErrInvalidConfig wraps every validation failure: an unknown store
	// driver, a missing data_dir or database_url, a bad timezone, or
	// metric thresholds and shift bounds the engine rejects.
	ErrInvalidConfig = errors.New("invalid dashboard config")
	// ErrLoadConfig wraps failures reading the YAML file, the .env file or
	// PRODBOARD_ environment overrides.
	ErrLoadConfig = errors.New("load dashboard config")
)
