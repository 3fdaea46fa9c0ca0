package api

import (
	"net/http"
	"strconv"

	"github.com/okian/prodboard/internal/adapters/export"
	service "github.com/okian/prodboard/internal/app"
	"github.com/okian/prodboard/internal/domain/types"
)

// ReportHandler serves the JSON views of one pipeline run.
type ReportHandler struct {
	deps Dependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

type summaryResponse struct {
	types.Summary
	Dropped service.Dropped `json:"dropped"`
}

type operatorRankingResponse struct {
	types.Selection
	Ranking []types.OperatorRank `json:"ranking"`
}

type efficiencyRankingResponse struct {
	types.Selection
	Ranking []types.Efficiency `json:"ranking"`
}

type eventsResponse struct {
	types.Selection
	Total  int           `json:"total"`
	Events []types.Event `json:"events"`
}

type machinesResponse struct {
	Machines []string `json:"machines"`
}

// HandleMachines handles GET /api/machines requests.
func (h *ReportHandler) HandleMachines(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_machines"
	ms, err := h.deps.Machines(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, machinesResponse{Machines: ms})
}

// HandleSummary handles GET /api/summary requests.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	res, ok := runQuery(w, r, h.deps, "api.get_summary")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary: types.NewSummary(selection(res), res.Report, h.deps.MetricsConfig()),
		Dropped: res.Dropped,
	})
}

// HandleOperatorRanking handles GET /api/ranking/operators requests.
func (h *ReportHandler) HandleOperatorRanking(w http.ResponseWriter, r *http.Request) {
	res, ok := runQuery(w, r, h.deps, "api.get_operator_ranking")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, operatorRankingResponse{
		Selection: selection(res),
		Ranking:   types.NewOperatorRanking(res.Report.Snapshot.Operators),
	})
}

// HandleEfficiencyRanking handles GET /api/ranking/efficiency requests.
func (h *ReportHandler) HandleEfficiencyRanking(w http.ResponseWriter, r *http.Request) {
	res, ok := runQuery(w, r, h.deps, "api.get_efficiency_ranking")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, efficiencyRankingResponse{
		Selection: selection(res),
		Ranking:   types.NewEfficiencyRanking(res.Report.Snapshot.Efficiency),
	})
}

// HandleShifts handles GET /api/shifts requests.
func (h *ReportHandler) HandleShifts(w http.ResponseWriter, r *http.Request) {
	res, ok := runQuery(w, r, h.deps, "api.get_shifts")
	if !ok {
		return
	}
	snap := res.Report.Snapshot
	writeJSON(w, http.StatusOK, types.NewShifts(selection(res), snap.ShiftMachine, snap.ShiftTotals))
}

// HandleCharts handles GET /api/charts requests.
func (h *ReportHandler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	res, ok := runQuery(w, r, h.deps, "api.get_charts")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, types.NewCharts(selection(res), res.Report))
}

// HandleEvents handles GET /api/events?limit=N requests. Events are newest
// first; limit caps the page, total counts every matching event.
func (h *ReportHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_events"
	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	res, ok := runQuery(w, r, h.deps, op)
	if !ok {
		return
	}
	sorted := export.NewestFirst(res.Events)
	if limit >= 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	out := eventsResponse{
		Selection: selection(res),
		Total:     len(res.Events),
		Events:    make([]types.Event, len(sorted)),
	}
	for i, ev := range sorted {
		out.Events[i] = types.NewEvent(ev)
	}
	writeJSON(w, http.StatusOK, out)
}

// runQuery parses the selection and executes the pipeline, writing the error
// response itself when it fails.
func runQuery(w http.ResponseWriter, r *http.Request, deps Dependencies, op string) (*service.Result, bool) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return nil, false
	}
	res, err := deps.Run(r.Context(), q)
	if err != nil {
		writeRunError(w, Wrap(op, err))
		return nil, false
	}
	return res, true
}

func selection(res *service.Result) types.Selection {
	return types.Selection{RunID: res.RunID, Machines: res.Machines, Missing: res.Missing}
}
