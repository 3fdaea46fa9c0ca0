// Package filter narrows a normalized event sequence by user-selected criteria.
package filter

import (
	"strings"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
)

// Criteria is the user's current selection. A zero field means no
// restriction on that axis. Criteria values are never modified in place.
type Criteria struct {
	// From and To bound the calendar date, both inclusive. Only the date part is used.
	From time.Time
	To   time.Time

	// Operators is an allow-list of operator names.
	Operators []string

	// Serial is a case-insensitive substring query.
	Serial string
}

// IsZero reports whether the criteria restrict nothing.
func (c Criteria) IsZero() bool {
	return c.From.IsZero() && c.To.IsZero() && len(c.Operators) == 0 && strings.TrimSpace(c.Serial) == ""
}

// Predicate decides whether a single event is kept.
type Predicate func(model.Event) bool

// Predicates returns one predicate per restricted axis.
func (c Criteria) Predicates() []Predicate {
	var preds []Predicate
	if !c.From.IsZero() || !c.To.IsZero() {
		preds = append(preds, ByDateRange(c.From, c.To))
	}
	if len(c.Operators) > 0 {
		preds = append(preds, ByOperators(c.Operators))
	}
	if strings.TrimSpace(c.Serial) != "" {
		preds = append(preds, BySerial(c.Serial))
	}
	return preds
}

// Apply returns the events matching every restriction in c, in input order.
// The input slice is not modified; the result never aliases it.
func Apply(events []model.Event, c Criteria) []model.Event {
	return Select(events, c.Predicates()...)
}

// Select keeps the events for which every predicate holds.
func Select(events []model.Event, preds ...Predicate) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if matchAll(ev, preds) {
			out = append(out, ev)
		}
	}
	return out
}

func matchAll(ev model.Event, preds []Predicate) bool {
	for _, p := range preds {
		if !p(ev) {
			return false
		}
	}
	return true
}

// ByDateRange keeps events whose calendar date lies in [from, to].
// A zero bound is open. Events without a date never match.
func ByDateRange(from, to time.Time) Predicate {
	lo, hasLo := dayKey(from)
	hi, hasHi := dayKey(to)
	return func(ev model.Event) bool {
		day, ok := dayKey(ev.Date)
		if !ok {
			return false
		}
		if hasLo && day < lo {
			return false
		}
		if hasHi && day > hi {
			return false
		}
		return true
	}
}

// dayKey folds a date into a comparable yyyymmdd integer in the date's own location.
func dayKey(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d, true
}

// ByOperators keeps events whose operator is in the allow-list.
// An empty allow-list keeps everything.
func ByOperators(ops []string) Predicate {
	allowed := make(map[string]struct{}, len(ops))
	for _, op := range ops {
		if op = strings.TrimSpace(op); op != "" {
			allowed[op] = struct{}{}
		}
	}
	return func(ev model.Event) bool {
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[ev.Operator]
		return ok
	}
}

// BySerial keeps events whose serial contains query, ignoring case.
// An empty query keeps everything; an empty serial never matches a non-empty query.
func BySerial(query string) Predicate {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(ev model.Event) bool {
		if q == "" {
			return true
		}
		if ev.Serial == "" {
			return false
		}
		return strings.Contains(strings.ToLower(ev.Serial), q)
	}
}
