// Package export renders the filtered event table and the summary report as
// CSV, XLSX and PDF documents.
package export

import (
	"sort"
	"strconv"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
)

// Download names used by the dashboard.
const (
	CSVFilename  = "lista_seriales.csv"
	XLSXFilename = "lista_seriales.xlsx"
	PDFFilename  = "resumen.pdf"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Header is the column order of every tabular export.
var Header = []string{"Serial", "Duracion", "Operador", "Maquina", "Fecha", "Hora", "Estado"}

// Row is one exported event rendered as text.
type Row struct {
	Serial   string
	Duration string
	Operator string
	Machine  string
	Date     string
	Time     string
	Status   string

	minutes model.Minutes
}

// Cells returns the row in Header order.
func (r Row) Cells() []string {
	return []string{r.Serial, r.Duration, r.Operator, r.Machine, r.Date, r.Time, r.Status}
}

// Rows renders events in NewestFirst order.
func Rows(events []model.Event) []Row {
	sorted := NewestFirst(events)
	out := make([]Row, 0, len(sorted))
	for _, ev := range sorted {
		out = append(out, toRow(ev))
	}
	return out
}

// NewestFirst returns a copy of events ordered by date and time, newest
// first. Events without a time sort before timed ones of the same day;
// undated events come last. Ties keep input order.
func NewestFirst(events []model.Event) []model.Event {
	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return newer(sorted[i], sorted[j]) })
	return sorted
}

func newer(a, b model.Event) bool {
	if a.HasDate() != b.HasDate() {
		return a.HasDate()
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return clockKey(a) > clockKey(b)
}

func clockKey(ev model.Event) time.Duration {
	if !ev.HasClock {
		return -1
	}
	return ev.Clock
}

func toRow(ev model.Event) Row {
	r := Row{
		Serial:   ev.Serial,
		Operator: ev.Operator,
		Machine:  ev.Machine,
		Status:   statusText(ev),
		minutes:  ev.Duration,
	}
	if ev.Duration.Valid {
		r.Duration = strconv.FormatFloat(ev.Duration.Value, 'f', -1, 64)
	}
	if ev.HasDate() {
		r.Date = ev.Date.Format(dateLayout)
	}
	if ev.HasClock {
		r.Time = time.Time{}.Add(ev.Clock).Format(timeLayout)
	}
	return r
}

// statusText keeps the store's own label so exports match the source files.
func statusText(ev model.Event) string {
	if ev.RawStatus != "" {
		return ev.RawStatus
	}
	if ev.Status == model.StatusUnknown {
		return ""
	}
	return ev.Status.String()
}
