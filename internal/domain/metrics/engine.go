package metrics

import "github.com/okian/prodboard/internal/domain/model"

// Snapshot is the set of KPIs and rankings for one filtered event set.
// It is recomputed per request and never stored.
type Snapshot struct {
	Total                int
	Rejected             int
	AcceptedMeanDuration float64
	RejectionRate        float64
	MeanInterArrival     float64

	Operators    []OperatorCount
	Efficiency   []Efficiency
	ShiftMachine []ShiftCount
	ShiftTotals  map[Shift]int
}

// Alerts are advisory threshold flags for the display layer.
type Alerts struct {
	DurationExceeded      bool
	RejectionRateExceeded bool
}

// Any reports whether any alert is raised.
func (a Alerts) Any() bool {
	return a.DurationExceeded || a.RejectionRateExceeded
}

// Report bundles the snapshot, its alerts and the chart series.
type Report struct {
	Snapshot         Snapshot
	Alerts           Alerts
	Status           []StatusCount
	MachineOperator  []MachineOperatorCount
	OperatorDuration []OperatorDuration
}

// Engine computes reports with a fixed configuration.
type Engine struct {
	cfg Config
}

// New creates an Engine. The configuration is copied and not read from anywhere else.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Snapshot computes the KPIs and rankings over events.
func (e *Engine) Snapshot(events []model.Event) Snapshot {
	total := TotalCount(events)
	rejected := RejectedCount(events)
	shifts := ShiftMachineCounts(events, e.cfg.Shifts)
	return Snapshot{
		Total:                total,
		Rejected:             rejected,
		AcceptedMeanDuration: AcceptedMeanDuration(events),
		RejectionRate:        RejectionRate(rejected, total),
		MeanInterArrival:     MeanInterArrival(events),
		Operators:            OperatorRanking(events),
		Efficiency:           EfficiencyRanking(events),
		ShiftMachine:         shifts,
		ShiftTotals:          ShiftTotals(shifts),
	}
}

// Alerts evaluates both ceilings against s. A value equal to its ceiling does not alert.
func (e *Engine) Alerts(s Snapshot) Alerts {
	return Alerts{
		DurationExceeded:      s.AcceptedMeanDuration > e.cfg.DurationCeiling,
		RejectionRateExceeded: s.RejectionRate > e.cfg.RejectionRateCeiling,
	}
}

// Compute builds the full report over events.
func (e *Engine) Compute(events []model.Event) Report {
	s := e.Snapshot(events)
	return Report{
		Snapshot:         s,
		Alerts:           e.Alerts(s),
		Status:           StatusBreakdown(events),
		MachineOperator:  MachineOperatorCounts(events),
		OperatorDuration: OperatorMeanDuration(events),
	}
}
