// Package seed writes simulated machine stores and a matching dashboard
// configuration file.
package seed

import "time"

// Config holds configuration for one seed run.
type Config struct {
	Dir        string    // Directory for file stores
	Format     string    // csv or xlsx
	DSN        string    // Postgres DSN; when set records go to the database instead of files
	Table      string    // Postgres records table
	Records    int       // Number of records across all machines
	Days       int       // Day span ending at Reference
	Seed       uint64    // Random seed
	Reference  time.Time // Newest record date
	ConfigFile string    // Output YAML config path; empty skips it
}

// Stats holds seed run statistics.
type Stats struct {
	Machines   int
	Records    int
	PerMachine map[string]int
	StartTime  time.Time
	Duration   time.Duration
}

// fileConfig is the subset of dashboard settings the seed output needs.
// Keys match the dashboard's koanf keys.
type fileConfig struct {
	StoreDriver string   `yaml:"store_driver"`
	DataDir     string   `yaml:"data_dir,omitempty"`
	DatabaseURL string   `yaml:"database_url,omitempty"`
	Table       string   `yaml:"table,omitempty"`
	Machines    []string `yaml:"machines"`
	Timezone    string   `yaml:"timezone"`
}
