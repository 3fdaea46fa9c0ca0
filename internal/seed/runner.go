package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/prodboard/internal/adapters/repository"
	"github.com/okian/prodboard/internal/config"
	"github.com/okian/prodboard/internal/demodata"
	"github.com/okian/prodboard/internal/domain/model"
	"github.com/okian/prodboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	configPermission    = 0o600
)

// Run generates the demo data set and writes it to the configured target.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), PerMachine: make(map[string]int)}
	log := logger.Get().Named("seed")

	data, err := demodata.Generate(demodata.NewConfig(
		demodata.WithRecords(cfg.Records),
		demodata.WithDays(cfg.Days),
		demodata.WithReference(cfg.Reference),
		demodata.WithSeed(cfg.Seed),
	))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	machines := make([]string, 0, len(data))
	for m := range data {
		machines = append(machines, m)
	}
	sort.Strings(machines)

	log.Info(ctx, "seeding machine stores",
		logger.Strings("machines", machines),
		logger.Int("records", cfg.Records),
		logger.Bool("postgres", cfg.DSN != ""))

	out := fileConfig{Machines: machines, Timezone: "UTC"}
	if cfg.DSN != "" {
		if err := writePostgres(ctx, cfg, machines, data); err != nil {
			return nil, err
		}
		out.StoreDriver = config.DriverPostgres
		out.DatabaseURL = cfg.DSN
		out.Table = cfg.Table
	} else {
		if err := writeFiles(cfg, machines, data); err != nil {
			return nil, err
		}
		out.StoreDriver = config.DriverFile
		out.DataDir = cfg.Dir
	}

	for _, m := range machines {
		stats.PerMachine[m] = len(data[m])
		stats.Records += len(data[m])
	}
	stats.Machines = len(machines)

	if cfg.ConfigFile != "" {
		if err := writeConfigFile(cfg.ConfigFile, out); err != nil {
			return nil, err
		}
		log.Info(ctx, "wrote dashboard config", logger.String("path", cfg.ConfigFile))
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seed finished",
		logger.Int("machines", stats.Machines),
		logger.Int("records", stats.Records),
		logger.Duration("took", stats.Duration))
	return stats, nil
}

func writeFiles(cfg *Config, machines []string, data map[string][]model.RawRecord) error {
	format, err := repository.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Dir, directoryPermission); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Dir, err)
	}
	store := repository.NewFileStore(cfg.Dir)
	for _, m := range machines {
		if err := store.Save(m, format, data[m]); err != nil {
			return fmt.Errorf("save %s: %w", m, err)
		}
	}
	return nil
}

func writePostgres(ctx context.Context, cfg *Config, machines []string, data map[string][]model.RawRecord) error {
	var opts []repository.PostgresOption
	if cfg.Table != "" {
		opts = append(opts, repository.WithTable(cfg.Table))
	}
	store, err := repository.OpenPostgres(ctx, cfg.DSN, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	for _, m := range machines {
		if err := store.Insert(ctx, m, data[m]); err != nil {
			return err
		}
	}
	return nil
}

func writeConfigFile(path string, out fileConfig) error {
	b, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, b, configPermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
