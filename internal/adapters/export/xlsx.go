package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/prodboard/internal/domain/metrics"
	"github.com/okian/prodboard/internal/domain/model"
)

// Sheet names of the exported workbook.
const (
	SheetEvents  = "seriales"
	SheetSummary = "resumen"
)

// BuildXLSX renders the event table as a single-sheet workbook.
func BuildXLSX(events []model.Event) ([]byte, error) {
	return BuildWorkbook(events, nil)
}

// BuildWorkbook renders the event table and, when report is not nil, a
// summary sheet with the KPIs and rankings.
func BuildWorkbook(events []model.Event, report *metrics.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetEvents); err != nil {
		return nil, err
	}
	header := Header
	if err := f.SetSheetRow(SheetEvents, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range Rows(events) {
		cells := r.Cells()
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		// keep durations numeric so the sheet can sum them
		if r.minutes.Valid {
			row[1] = r.minutes.Value
		}
		if err := setRow(f, SheetEvents, i+2, row); err != nil {
			return nil, err
		}
	}

	if report != nil {
		if err := writeSummary(f, *report); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, report metrics.Report) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	s := report.Snapshot
	rows := [][]interface{}{
		{"Total piezas", s.Total},
		{"Rechazadas", s.Rejected},
		{"Tasa de rechazo (%)", s.RejectionRate},
		{"Duracion promedio aceptadas (min)", s.AcceptedMeanDuration},
		{"Tiempo entre piezas (min)", s.MeanInterArrival},
		{"Alerta duracion", report.Alerts.DurationExceeded},
		{"Alerta rechazo", report.Alerts.RejectionRateExceeded},
		{},
		{"Operador", "Piezas"},
	}
	for _, op := range s.Operators {
		rows = append(rows, []interface{}{op.Operator, op.Count})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Maquina", "Operador", "Piezas por hora", "Horas", "Piezas"})
	for _, e := range s.Efficiency {
		rows = append(rows, []interface{}{e.Machine, e.Operator, e.PiecesPerHour, e.Buckets, e.Pieces})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Maquina", "Turno", "Piezas"})
	for _, sc := range s.ShiftMachine {
		rows = append(rows, []interface{}{sc.Machine, sc.Shift.String(), sc.Count})
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := setRow(f, SheetSummary, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &row)
}
