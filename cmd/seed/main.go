package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/prodboard/internal/adapters/repository"
	"github.com/okian/prodboard/internal/demodata"
	"github.com/okian/prodboard/internal/seed"
	"github.com/okian/prodboard/pkg/logger"
)

const defaultSeedTimeout = 5 * time.Minute

func main() {
	var (
		dir        = flag.String("dir", "data", "Directory for machine files")
		format     = flag.String("format", string(repository.FormatCSV), "File format: csv or xlsx")
		dsn        = flag.String("dsn", "", "Postgres DSN; when set records are inserted into the database")
		table      = flag.String("table", repository.DefaultTable, "Postgres records table")
		records    = flag.Int("records", demodata.DefaultRecords, "Number of records across all machines")
		days       = flag.Int("days", demodata.DefaultDays, "Day span of record dates, ending today")
		seedValue  = flag.Uint64("seed", 1, "Random seed")
		configFile = flag.String("config", "prodboard.yaml", "Dashboard config file to write; empty skips it")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	stats, err := seed.Run(ctx, &seed.Config{
		Dir:        *dir,
		Format:     *format,
		DSN:        *dsn,
		Table:      *table,
		Records:    *records,
		Days:       *days,
		Seed:       *seedValue,
		Reference:  time.Now(),
		ConfigFile: *configFile,
	})
	if err != nil {
		os.Stderr.WriteString("Seed failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	seed.PrintStats(os.Stdout, stats)
}
