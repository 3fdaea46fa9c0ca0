// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	service "github.com/okian/prodboard/internal/app"
	"github.com/okian/prodboard/internal/domain/metrics"
	"github.com/okian/prodboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Run executes one pipeline run for the selection.
	Run(ctx context.Context, q service.Query) (*service.Result, error)

	// Machines lists the machines the store offers.
	Machines(ctx context.Context) ([]string, error)

	// MetricsConfig exposes the thresholds the alerts are evaluated against.
	MetricsConfig() metrics.Config
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	reportHandler    *ReportHandler
	exportHandler    *ExportHandler
	dashboardHandler *dashboardHandler
	logger           logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger logger.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for recovered panics.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock stamped on generated reports.
func WithClock(now func() time.Time) Option {
	return func(o *serverOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get()
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		reportHandler:    NewReportHandler(deps),
		exportHandler:    NewExportHandler(deps, o.now),
		dashboardHandler: newdashboardHandler(),
		logger:           o.logger.Named("api"),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	get := func(path, endpoint string, h http.HandlerFunc) {
		r.HandleFunc(path, MetricsMiddleware(h, endpoint)).Methods(http.MethodGet)
	}

	r.Handle("/", http.RedirectHandler("/dashboard", http.StatusFound)).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard).Methods(http.MethodGet)
	get("/healthz", "healthz", s.healthHandler.HandleHealth)
	get("/stats", "stats", s.statsHandler.HandleStats)

	get("/api/machines", "machines", s.reportHandler.HandleMachines)
	get("/api/summary", "summary", s.reportHandler.HandleSummary)
	get("/api/ranking/operators", "ranking_operators", s.reportHandler.HandleOperatorRanking)
	get("/api/ranking/efficiency", "ranking_efficiency", s.reportHandler.HandleEfficiencyRanking)
	get("/api/shifts", "shifts", s.reportHandler.HandleShifts)
	get("/api/charts", "charts", s.reportHandler.HandleCharts)
	get("/api/events", "events", s.reportHandler.HandleEvents)

	get("/api/export.csv", "export_csv", s.exportHandler.HandleCSV)
	get("/api/export.xlsx", "export_xlsx", s.exportHandler.HandleXLSX)
	get("/api/report.pdf", "report_pdf", s.exportHandler.HandlePDF)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

// Handler wraps h with panic recovery and response compression.
func (s *Server) Handler(h http.Handler) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(handlers.CompressHandler(h))
}

// recoveryLogger adapts the structured logger to gorilla's RecoveryHandlerLogger.
type recoveryLogger struct {
	logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.Error(context.Background(), "recovered from panic", logger.String("panic", fmt.Sprint(v...)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeRunError maps a pipeline error onto the API error taxonomy.
func writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNoData):
		writeError(w, http.StatusNotFound, "no_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
