package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/okian/prodboard/internal/domain/filter"
	"github.com/okian/prodboard/internal/domain/metrics"
)

// maxPDFRows caps each ranking table so the report stays on a few pages.
const maxPDFRows = 20

// BuildSummaryPDF renders the KPIs, alerts and rankings of report along with
// the filter that produced it.
func BuildSummaryPDF(report metrics.Report, c filter.Criteria, machines []string, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Production Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	line := func(format string, args ...interface{}) {
		pdf.Cell(0, 6, tr(fmt.Sprintf(format, args...)))
		pdf.Ln(5)
	}
	line("Generated: %s", generated.Format(time.RFC3339))
	line("Machines: %s", orAll(strings.Join(machines, ", ")))
	line("From: %s", orAll(dayText(c.From)))
	line("To: %s", orAll(dayText(c.To)))
	line("Operators: %s", orAll(strings.Join(c.Operators, ", ")))
	if c.Serial != "" {
		line("Serial contains: %s", c.Serial)
	}

	s := report.Snapshot
	pdf.Ln(4)
	line("Total pieces: %d", s.Total)
	line("Rejected: %d", s.Rejected)
	line("Rejection rate: %.2f %%", s.RejectionRate)
	line("Accepted mean duration: %.2f min", s.AcceptedMeanDuration)
	line("Mean time between pieces: %.2f min", s.MeanInterArrival)
	if report.Alerts.DurationExceeded {
		line("ALERT: accepted mean duration above ceiling")
	}
	if report.Alerts.RejectionRateExceeded {
		line("ALERT: rejection rate above ceiling")
	}

	table := func(title string, widths []float64, header []string, rows [][]string) {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, title)
		pdf.Ln(7)
		pdf.SetFont("Arial", "B", 10)
		for i, h := range header {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for n, row := range rows {
			if n == maxPDFRows {
				break
			}
			for i, v := range row {
				align := "L"
				if i > 0 && i == len(row)-1 {
					align = "R"
				}
				pdf.CellFormat(widths[i], 6, tr(v), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	ops := make([][]string, 0, len(s.Operators))
	for _, op := range s.Operators {
		ops = append(ops, []string{op.Operator, fmt.Sprintf("%d", op.Count)})
	}
	table("Operator ranking", []float64{60, 30}, []string{"Operator", "Pieces"}, ops)

	eff := make([][]string, 0, len(s.Efficiency))
	for _, e := range s.Efficiency {
		eff = append(eff, []string{e.Machine, e.Operator, fmt.Sprintf("%.2f", e.PiecesPerHour)})
	}
	table("Efficiency ranking", []float64{50, 50, 40}, []string{"Machine", "Operator", "Pieces/hour"}, eff)

	shifts := make([][]string, 0, len(s.ShiftMachine))
	for _, sc := range s.ShiftMachine {
		shifts = append(shifts, []string{sc.Machine, sc.Shift.String(), fmt.Sprintf("%d", sc.Count)})
	}
	table("Pieces per shift", []float64{50, 40, 30}, []string{"Machine", "Shift", "Pieces"}, shifts)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func dayText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
