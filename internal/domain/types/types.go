// Package types contains the JSON shapes served by the dashboard API.
package types

import (
	"time"

	"github.com/okian/prodboard/internal/domain/metrics"
	"github.com/okian/prodboard/internal/domain/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Selection echoes what a response was computed over.
type Selection struct {
	RunID    string   `json:"runId"`
	Machines []string `json:"machines"`
	Missing  []string `json:"missing,omitempty"`
}

// Alerts mirrors metrics.Alerts.
type Alerts struct {
	DurationExceeded      bool `json:"durationExceeded"`
	RejectionRateExceeded bool `json:"rejectionRateExceeded"`
}

// Thresholds are the ceilings the alerts were evaluated against.
type Thresholds struct {
	DurationCeiling      float64 `json:"durationCeiling"`
	RejectionRateCeiling float64 `json:"rejectionRateCeiling"`
}

// Summary is the KPI card set.
type Summary struct {
	Selection
	Total                int        `json:"total"`
	Rejected             int        `json:"rejected"`
	RejectionRate        float64    `json:"rejectionRate"`
	AcceptedMeanDuration float64    `json:"acceptedMeanDuration"`
	MeanInterArrival     float64    `json:"meanInterArrival"`
	Alerts               Alerts     `json:"alerts"`
	Thresholds           Thresholds `json:"thresholds"`
}

// OperatorRank is one row of the operator ranking.
type OperatorRank struct {
	Rank     int    `json:"rank"`
	Operator string `json:"operator"`
	Pieces   int    `json:"pieces"`
}

// Efficiency is one row of the efficiency ranking.
type Efficiency struct {
	Rank          int     `json:"rank"`
	Machine       string  `json:"machine"`
	Operator      string  `json:"operator"`
	PiecesPerHour float64 `json:"piecesPerHour"`
	Hours         int     `json:"hours"`
	Pieces        int     `json:"pieces"`
}

// ShiftCount is the production of one machine in one shift.
type ShiftCount struct {
	Machine string `json:"machine"`
	Shift   string `json:"shift"`
	Pieces  int    `json:"pieces"`
}

// Shifts holds per-machine counts and per-shift totals.
type Shifts struct {
	Selection
	Counts []ShiftCount   `json:"counts"`
	Totals map[string]int `json:"totals"`
}

// StatusCount is one slice of the status chart.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MachineOperatorCount is one bar of the pieces chart.
type MachineOperatorCount struct {
	Machine  string `json:"machine"`
	Operator string `json:"operator"`
	Pieces   int    `json:"pieces"`
}

// OperatorDuration is one bar of the duration chart.
type OperatorDuration struct {
	Operator    string  `json:"operator"`
	MeanMinutes float64 `json:"meanMinutes"`
}

// Charts holds every chart series.
type Charts struct {
	Selection
	Status           []StatusCount          `json:"status"`
	MachineOperator  []MachineOperatorCount `json:"machineOperator"`
	OperatorDuration []OperatorDuration     `json:"operatorDuration"`
}

// Event is one row of the event table. Absent fields are null.
type Event struct {
	Serial   string   `json:"serial"`
	Duration *float64 `json:"duration"`
	Operator string   `json:"operator"`
	Machine  string   `json:"machine"`
	Date     string   `json:"date,omitempty"`
	Time     string   `json:"time,omitempty"`
	Status   string   `json:"status"`
}

// NewSummary builds the KPI view of a report.
func NewSummary(sel Selection, r metrics.Report, cfg metrics.Config) Summary {
	s := r.Snapshot
	return Summary{
		Selection:            sel,
		Total:                s.Total,
		Rejected:             s.Rejected,
		RejectionRate:        s.RejectionRate,
		AcceptedMeanDuration: s.AcceptedMeanDuration,
		MeanInterArrival:     s.MeanInterArrival,
		Alerts: Alerts{
			DurationExceeded:      r.Alerts.DurationExceeded,
			RejectionRateExceeded: r.Alerts.RejectionRateExceeded,
		},
		Thresholds: Thresholds{
			DurationCeiling:      cfg.DurationCeiling,
			RejectionRateCeiling: cfg.RejectionRateCeiling,
		},
	}
}

// NewOperatorRanking numbers the operator ranking from 1.
func NewOperatorRanking(ops []metrics.OperatorCount) []OperatorRank {
	out := make([]OperatorRank, len(ops))
	for i, op := range ops {
		out[i] = OperatorRank{Rank: i + 1, Operator: op.Operator, Pieces: op.Count}
	}
	return out
}

// NewEfficiencyRanking numbers the efficiency ranking from 1.
func NewEfficiencyRanking(effs []metrics.Efficiency) []Efficiency {
	out := make([]Efficiency, len(effs))
	for i, e := range effs {
		out[i] = Efficiency{
			Rank:          i + 1,
			Machine:       e.Machine,
			Operator:      e.Operator,
			PiecesPerHour: e.PiecesPerHour,
			Hours:         e.Buckets,
			Pieces:        e.Pieces,
		}
	}
	return out
}

// NewShifts builds the shift view. Every shift appears in the totals.
func NewShifts(sel Selection, counts []metrics.ShiftCount, totals map[metrics.Shift]int) Shifts {
	out := Shifts{
		Selection: sel,
		Counts:    make([]ShiftCount, len(counts)),
		Totals:    make(map[string]int, 3),
	}
	for i, c := range counts {
		out.Counts[i] = ShiftCount{Machine: c.Machine, Shift: c.Shift.String(), Pieces: c.Count}
	}
	for _, sh := range []metrics.Shift{metrics.ShiftMorning, metrics.ShiftAfternoon, metrics.ShiftNight} {
		out.Totals[sh.String()] = totals[sh]
	}
	return out
}

// NewCharts builds the chart series view.
func NewCharts(sel Selection, r metrics.Report) Charts {
	out := Charts{
		Selection:        sel,
		Status:           make([]StatusCount, len(r.Status)),
		MachineOperator:  make([]MachineOperatorCount, len(r.MachineOperator)),
		OperatorDuration: make([]OperatorDuration, len(r.OperatorDuration)),
	}
	for i, s := range r.Status {
		out.Status[i] = StatusCount{Status: s.Status.String(), Count: s.Count}
	}
	for i, m := range r.MachineOperator {
		out.MachineOperator[i] = MachineOperatorCount{Machine: m.Machine, Operator: m.Operator, Pieces: m.Count}
	}
	for i, d := range r.OperatorDuration {
		out.OperatorDuration[i] = OperatorDuration{Operator: d.Operator, MeanMinutes: d.MeanMinutes}
	}
	return out
}

// NewEvent renders one event for the table.
func NewEvent(ev model.Event) Event {
	out := Event{
		Serial:   ev.Serial,
		Operator: ev.Operator,
		Machine:  ev.Machine,
		Status:   ev.Status.String(),
	}
	if ev.Duration.Valid {
		v := ev.Duration.Value
		out.Duration = &v
	}
	if ev.HasDate() {
		out.Date = ev.Date.Format(dateLayout)
	}
	if ev.HasClock {
		out.Time = time.Time{}.Add(ev.Clock).Format(timeLayout)
	}
	return out
}
