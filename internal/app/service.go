// Package service runs the dashboard pipeline: load the selected machine
// stores, normalize, filter and compute the metrics report.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/prodboard/internal/adapters/repository"
	"github.com/okian/prodboard/internal/domain/filter"
	"github.com/okian/prodboard/internal/domain/metrics"
	"github.com/okian/prodboard/internal/domain/model"
	"github.com/okian/prodboard/internal/domain/normalize"
	"github.com/okian/prodboard/pkg/logger"
	pmetrics "github.com/okian/prodboard/pkg/metrics"
)

// Query is one dashboard request.
type Query struct {
	// Machines to load. Empty means the service default selection.
	Machines []string
	Criteria filter.Criteria
}

// Dropped counts record fields the normalizer could not coerce.
type Dropped struct {
	Durations        int `json:"durations"`
	MissingDurations int `json:"missingDurations"`
	Timestamps       int `json:"timestamps"`
}

// Result is the output of one pipeline run. It owns its events; nothing
// else holds a reference to them.
type Result struct {
	RunID    string
	Machines []string
	Missing  []string
	Events   []model.Event
	Report   metrics.Report
	Dropped  Dropped
}

// Service implements the API dependencies for the dashboard.
type Service struct {
	store      repository.Store
	machines   []string
	metricsCfg metrics.Config
	loc        *time.Location
	logger     logger.Logger

	engine     *metrics.Engine
	normalizer *normalize.Normalizer
	startedAt  time.Time

	runs     atomic.Int64
	failures atomic.Int64

	mu        sync.RWMutex
	lastRunID string
	lastRunAt time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the record store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMachines sets the default machine selection.
func WithMachines(machines []string) Option {
	return func(s *Service) {
		s.machines = cleanNames(machines)
	}
}

// WithMetricsConfig sets the alert ceilings and shift bounds.
func WithMetricsConfig(cfg metrics.Config) Option {
	return func(s *Service) {
		s.metricsCfg = cfg
	}
}

// WithLocation sets the zone record dates and times are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New constructs a Service. Without WithStore it serves an empty memory store.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		metricsCfg: metrics.DefaultConfig(),
		loc:        time.UTC,
		startedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.metricsCfg.Validate(); err != nil {
		return nil, err
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(nil)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")
	s.engine = metrics.New(s.metricsCfg)
	s.normalizer = normalize.New(normalize.WithLocation(s.loc))
	return s, nil
}

// MetricsConfig returns the engine configuration.
func (s *Service) MetricsConfig() metrics.Config {
	return s.engine.Config()
}

// Machines lists every machine the store offers.
func (s *Service) Machines(ctx context.Context) ([]string, error) {
	ms, err := s.store.Machines(ctx)
	if err != nil {
		pmetrics.RecordErrorByComponent("service", "store")
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return ms, nil
}

// Run executes the pipeline for q. Machines without a store are reported in
// Result.Missing and skipped; any other store error aborts the run. When no
// selected machine has a store, Run returns ErrNoData.
func (s *Service) Run(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))
	s.runs.Add(1)

	res, outcome, err := s.run(ctx, log, runID, q)
	elapsed := time.Since(start)
	pmetrics.RecordPipelineRun(outcome, float64(elapsed.Microseconds())/1000)
	if err != nil {
		s.failures.Add(1)
		switch {
		case errors.Is(err, ErrInvalidQuery):
			log.Warn(ctx, "invalid query", logger.Error(err))
		case outcome == pmetrics.OutcomeNoData:
			log.Warn(ctx, "no data for selection", logger.Strings("machines", q.Machines), logger.Error(err))
		default:
			log.Error(ctx, "pipeline run failed", logger.Error(err))
		}
		return nil, err
	}

	s.mu.Lock()
	s.lastRunID = runID
	s.lastRunAt = start
	s.mu.Unlock()

	log.Info(ctx, "pipeline run finished",
		logger.Strings("machines", res.Machines),
		logger.Int("events", len(res.Events)),
		logger.Float64("rejection_rate", res.Report.Snapshot.RejectionRate),
		logger.Bool("alert", res.Report.Alerts.Any()),
		logger.Duration("took", elapsed),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context, log logger.Logger, runID string, q Query) (*Result, string, error) {
	c := q.Criteria
	if !c.From.IsZero() && !c.To.IsZero() && c.From.After(c.To) {
		return nil, pmetrics.OutcomeError, fmt.Errorf("%w: from %s is after to %s", ErrInvalidQuery,
			c.From.Format(time.DateOnly), c.To.Format(time.DateOnly))
	}

	machines := cleanNames(q.Machines)
	if len(machines) == 0 {
		machines = s.machines
	}
	if len(machines) == 0 {
		listed, err := s.Machines(ctx)
		if err != nil {
			return nil, pmetrics.OutcomeError, err
		}
		machines = listed
	}

	res := &Result{RunID: runID}
	batches := make([]normalize.Batch, 0, len(machines))
	for _, m := range machines {
		recs, err := s.store.Load(ctx, m)
		if errors.Is(err, repository.ErrNotFound) {
			pmetrics.RecordStoreMiss(m)
			log.Warn(ctx, "machine store not found", logger.String("machine", m))
			res.Missing = append(res.Missing, m)
			continue
		}
		if err != nil {
			pmetrics.RecordErrorByComponent("service", "store")
			return nil, pmetrics.OutcomeError, fmt.Errorf("load %s: %w", m, err)
		}
		pmetrics.RecordRecordsLoaded(m, len(recs))
		batches = append(batches, normalize.Batch{Machine: m, Records: recs})
		res.Machines = append(res.Machines, m)
	}

	norm, err := s.normalizer.Normalize(batches)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, pmetrics.OutcomeNoData, err
		}
		return nil, pmetrics.OutcomeError, err
	}
	res.Dropped = Dropped{
		Durations:        norm.DurationFailures,
		MissingDurations: norm.MissingDurations,
		Timestamps:       norm.TimestampFailures,
	}
	pmetrics.RecordCoercionFailures("duration", norm.DurationFailures)
	pmetrics.RecordCoercionFailures("timestamp", norm.TimestampFailures)
	if norm.DurationFailures > 0 || norm.TimestampFailures > 0 {
		log.Debug(ctx, "records with uncoercible fields kept",
			logger.Int("duration_failures", norm.DurationFailures),
			logger.Int("timestamp_failures", norm.TimestampFailures),
		)
	}

	res.Events = filter.Apply(norm.Events, q.Criteria)
	res.Report = s.engine.Compute(res.Events)

	snap := res.Report.Snapshot
	pmetrics.UpdateFilteredEvents(len(res.Events))
	pmetrics.UpdateSnapshot(snap.RejectionRate, snap.AcceptedMeanDuration,
		res.Report.Alerts.DurationExceeded, res.Report.Alerts.RejectionRateExceeded)
	return res, pmetrics.OutcomeOK, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	lastRunID, lastRunAt := s.lastRunID, s.lastRunAt
	s.mu.RUnlock()

	cfg := s.engine.Config()
	stats := map[string]interface{}{
		"store":                s.storeKind(),
		"machines":             append([]string(nil), s.machines...),
		"timezone":             s.loc.String(),
		"runs":                 s.runs.Load(),
		"failedRuns":           s.failures.Load(),
		"durationCeiling":      cfg.DurationCeiling,
		"rejectionRateCeiling": cfg.RejectionRateCeiling,
		"uptimeSeconds":        int64(time.Since(s.startedAt).Seconds()),
	}
	if lastRunID != "" {
		stats["lastRunId"] = lastRunID
		stats["lastRunAt"] = lastRunAt.UTC().Format(time.RFC3339)
	}
	return stats
}

func (s *Service) storeKind() string {
	switch s.store.(type) {
	case *repository.FileStore:
		return "file"
	case *repository.PostgresStore:
		return "postgres"
	case *repository.MemoryStore:
		return "memory"
	default:
		return reflect.TypeOf(s.store).String()
	}
}

// cleanNames trims names, drops blanks and keeps the first of duplicates.
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
