// Package metrics computes the dashboard KPIs, shift classification and
// operator rankings over a filtered event sequence.
//
// Every function here is pure: it reads its input, allocates its output and
// is safe on an empty sequence, where ratios and means yield a sentinel 0.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
)

const percent = 100

// TotalCount is the number of events in the filtered sequence.
func TotalCount(events []model.Event) int {
	return len(events)
}

// RejectedCount counts Rejected events.
func RejectedCount(events []model.Event) int {
	n := 0
	for _, ev := range events {
		if ev.Status == model.StatusRejected {
			n++
		}
	}
	return n
}

// AcceptedMeanDuration is the mean duration of Accepted events that have a
// duration, rounded to 2 decimals. It is 0 when no such event exists.
func AcceptedMeanDuration(events []model.Event) float64 {
	var (
		sum float64
		n   int
	)
	for _, ev := range events {
		if ev.Status != model.StatusAccepted || !ev.Duration.Valid {
			continue
		}
		sum += ev.Duration.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

// RejectionRate is rejected/total as a percentage rounded to 2 decimals.
// It is 0 when total is 0.
func RejectionRate(rejected, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(rejected) / float64(total) * percent)
}

// MeanInterArrival is the mean gap in minutes between consecutive events
// ordered by timestamp. Events without a timestamp are ignored. It is 0 when
// fewer than two timed events remain. Input order does not matter.
func MeanInterArrival(events []model.Event) float64 {
	stamps := make([]time.Time, 0, len(events))
	for _, ev := range events {
		if ev.HasTimestamp() {
			stamps = append(stamps, ev.Timestamp)
		}
	}
	if len(stamps) < 2 {
		return 0
	}
	sort.SliceStable(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	var total time.Duration
	for i := 1; i < len(stamps); i++ {
		total += stamps[i].Sub(stamps[i-1])
	}
	return total.Minutes() / float64(len(stamps)-1)
}

// OperatorCount is one row of the global operator ranking.
type OperatorCount struct {
	Operator string
	Count    int
}

// OperatorRanking counts events per operator, highest first. Events with no
// operator are not ranked. Ties keep the order in which operators first
// appear in the input.
func OperatorRanking(events []model.Event) []OperatorCount {
	index := make(map[string]int)
	out := make([]OperatorCount, 0)
	for _, ev := range events {
		if ev.Operator == "" {
			continue
		}
		i, ok := index[ev.Operator]
		if !ok {
			i = len(out)
			index[ev.Operator] = i
			out = append(out, OperatorCount{Operator: ev.Operator})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Efficiency is the pieces-per-hour rate of one operator on one machine.
type Efficiency struct {
	Machine  string
	Operator string
	// PiecesPerHour is the mean of the per-hour bucket counts, not total over elapsed time.
	PiecesPerHour float64
	// Buckets is the number of distinct clock hours with production.
	Buckets int
	Pieces  int
}

type machineOperator struct {
	machine  string
	operator string
}

type hourBucket struct {
	machineOperator
	hour int64 // unix seconds of the hour start
}

// EfficiencyRanking groups timed events into (machine, operator, hour)
// buckets, counts each bucket, then averages the bucket counts per
// (machine, operator). Hours without production are not buckets, so the rate
// is the mean output of productive hours. Highest rate first; ties keep
// first-seen order. Events with no operator or no timestamp are skipped.
func EfficiencyRanking(events []model.Event) []Efficiency {
	buckets := make(map[hourBucket]int)
	index := make(map[machineOperator]int)
	out := make([]Efficiency, 0)
	for _, ev := range events {
		if ev.Operator == "" || !ev.HasTimestamp() {
			continue
		}
		key := machineOperator{machine: ev.Machine, operator: ev.Operator}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Efficiency{Machine: ev.Machine, Operator: ev.Operator})
		}
		b := hourBucket{machineOperator: key, hour: floorHour(ev.Timestamp).Unix()}
		if buckets[b] == 0 {
			out[i].Buckets++
		}
		buckets[b]++
		out[i].Pieces++
	}
	for i := range out {
		out[i].PiecesPerHour = float64(out[i].Pieces) / float64(out[i].Buckets)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PiecesPerHour > out[j].PiecesPerHour })
	return out
}

// ShiftCount is the number of events a machine produced in one shift.
type ShiftCount struct {
	Machine string
	Shift   Shift
	Count   int
}

// ShiftMachineCounts counts events per (machine, shift) using the hour of
// day. Only combinations present in the input are returned, ordered by
// machine then shift. Classification ignores the date, so an event with a
// time of day but an unparsable date still counts. Events without a time of
// day are skipped.
func ShiftMachineCounts(events []model.Event, bounds ShiftBounds) []ShiftCount {
	type key struct {
		machine string
		shift   Shift
	}
	counts := make(map[key]int)
	for _, ev := range events {
		hour, ok := ev.Hour()
		if !ok {
			continue
		}
		counts[key{machine: ev.Machine, shift: bounds.Classify(hour)}]++
	}
	out := make([]ShiftCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ShiftCount{Machine: k.machine, Shift: k.shift, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Machine != out[j].Machine {
			return out[i].Machine < out[j].Machine
		}
		return out[i].Shift < out[j].Shift
	})
	return out
}

// ShiftTotals rolls per-machine shift counts up to per-shift totals.
func ShiftTotals(counts []ShiftCount) map[Shift]int {
	out := make(map[Shift]int, len(counts))
	for _, c := range counts {
		out[c.Shift] += c.Count
	}
	return out
}

// StatusCount is the number of events with one status.
type StatusCount struct {
	Status model.Status
	Count  int
}

// StatusBreakdown counts events per status in Accepted, Rejected, Unknown
// order, omitting statuses that do not occur.
func StatusBreakdown(events []model.Event) []StatusCount {
	var accepted, rejected, unknown int
	for _, ev := range events {
		switch ev.Status {
		case model.StatusAccepted:
			accepted++
		case model.StatusRejected:
			rejected++
		default:
			unknown++
		}
	}
	out := make([]StatusCount, 0, 3)
	for _, sc := range []StatusCount{
		{Status: model.StatusAccepted, Count: accepted},
		{Status: model.StatusRejected, Count: rejected},
		{Status: model.StatusUnknown, Count: unknown},
	} {
		if sc.Count > 0 {
			out = append(out, sc)
		}
	}
	return out
}

// MachineOperatorCount is the number of pieces one operator made on one machine.
type MachineOperatorCount struct {
	Machine  string
	Operator string
	Count    int
}

// MachineOperatorCounts counts events per (machine, operator), ordered by
// machine then operator. Events with no operator are skipped.
func MachineOperatorCounts(events []model.Event) []MachineOperatorCount {
	counts := make(map[machineOperator]int)
	for _, ev := range events {
		if ev.Operator == "" {
			continue
		}
		counts[machineOperator{machine: ev.Machine, operator: ev.Operator}]++
	}
	out := make([]MachineOperatorCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, MachineOperatorCount{Machine: k.machine, Operator: k.operator, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Machine != out[j].Machine {
			return out[i].Machine < out[j].Machine
		}
		return out[i].Operator < out[j].Operator
	})
	return out
}

// OperatorDuration is the mean duration of one operator's pieces.
type OperatorDuration struct {
	Operator    string
	MeanMinutes float64
	Samples     int
}

// OperatorMeanDuration averages durations per operator over every status,
// ordered by operator. Operators with no valid duration are omitted.
func OperatorMeanDuration(events []model.Event) []OperatorDuration {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[string]*acc)
	for _, ev := range events {
		if ev.Operator == "" || !ev.Duration.Valid {
			continue
		}
		a, ok := sums[ev.Operator]
		if !ok {
			a = &acc{}
			sums[ev.Operator] = a
		}
		a.sum += ev.Duration.Value
		a.n++
	}
	out := make([]OperatorDuration, 0, len(sums))
	for op, a := range sums {
		out = append(out, OperatorDuration{Operator: op, MeanMinutes: round2(a.sum / float64(a.n)), Samples: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operator < out[j].Operator })
	return out
}

// floorHour drops minutes and below in the timestamp's own location.
func floorHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*percent) / percent
}
