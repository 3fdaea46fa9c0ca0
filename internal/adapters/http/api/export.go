package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/prodboard/internal/adapters/export"
	"github.com/okian/prodboard/pkg/metrics"
)

// ExportHandler serves the filtered event table and the summary report as
// downloadable documents.
type ExportHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, now func() time.Time) *ExportHandler {
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{deps: deps, now: now}
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// HandleCSV handles GET /api/export.csv requests.
func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_csv"
	res, ok := runQuery(w, r, h.deps, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.Events); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, fmt.Errorf("%w: %v", ErrRender, err)))
		return
	}
	writeAttachment(w, export.CSVFilename, contentTypeCSV, buf.Bytes())
	metrics.RecordExport("csv")
}

// HandleXLSX handles GET /api/export.xlsx requests. The workbook carries the
// event sheet and the summary sheet.
func (h *ExportHandler) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_xlsx"
	res, ok := runQuery(w, r, h.deps, op)
	if !ok {
		return
	}
	data, err := export.BuildWorkbook(res.Events, &res.Report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, fmt.Errorf("%w: %v", ErrRender, err)))
		return
	}
	writeAttachment(w, export.XLSXFilename, contentTypeXLSX, data)
	metrics.RecordExport("xlsx")
}

// HandlePDF handles GET /api/report.pdf requests.
func (h *ExportHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	const op = "api.report_pdf"
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
		return
	}
	res, err := h.deps.Run(r.Context(), q)
	if err != nil {
		writeRunError(w, Wrap(op, err))
		return
	}
	data, err := export.BuildSummaryPDF(res.Report, q.Criteria, res.Machines, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, fmt.Errorf("%w: %v", ErrRender, err)))
		return
	}
	writeAttachment(w, export.PDFFilename, contentTypePDF, data)
	metrics.RecordExport("pdf")
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
