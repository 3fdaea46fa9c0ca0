package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/prodboard/internal/adapters/http/api"
	"github.com/okian/prodboard/internal/adapters/http/swagger"
	"github.com/okian/prodboard/internal/adapters/repository"
	app "github.com/okian/prodboard/internal/app"
	"github.com/okian/prodboard/internal/config"
	"github.com/okian/prodboard/internal/demodata"
	"github.com/okian/prodboard/pkg/logger"
	"github.com/okian/prodboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	storeOpenTimeout          = 10 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	openCtx, cancelOpen := context.WithTimeout(ctx, storeOpenTimeout)
	store, closeStore, err := openStore(openCtx, cfg)
	cancelOpen()
	if err != nil {
		loggerInstance.Error(ctx, "failed to open store", logger.String("driver", cfg.StoreDriver), logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			loggerInstance.Error(ctx, "failed to close store", logger.Error(err))
		}
	}()

	svc, err := newService(cfg, store, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to create service", logger.Error(err))
		os.Exit(1)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, loggerInstance),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
			logger.Strings("machines", cfg.Machines))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// openStore opens the record store selected by cfg.StoreDriver. The returned
// close func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StoreDriver {
	case config.DriverFile:
		return repository.NewFileStore(cfg.DataDir), noop, nil
	case config.DriverPostgres:
		store, err := repository.OpenPostgres(ctx, cfg.DatabaseURL, repository.WithTable(cfg.Table))
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverMemory:
		data, err := demodata.Generate(demodata.NewConfig())
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMemoryStore(data), noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}

func newService(cfg *config.Config, store repository.Store, l logger.Logger) (*app.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(l),
		app.WithStore(store),
		app.WithMachines(cfg.Machines),
		app.WithMetricsConfig(cfg.MetricsConfig()),
		app.WithLocation(loc),
	)
}

// newHandler builds the router with the API docs and the dashboard routes.
func newHandler(ctx context.Context, svc *app.Service, l logger.Logger) http.Handler {
	r := mux.NewRouter()
	swagger.Register(ctx, r)

	apiServer := api.NewServer(svc, svc, api.WithLogger(l))
	apiServer.Register(ctx, r)
	return apiServer.Handler(r)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
