// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Status is the inspection outcome of a produced unit.
type Status int

// Known statuses. Anything a store reports outside Accepted/Rejected is Unknown.
const (
	StatusUnknown Status = iota
	StatusAccepted
	StatusRejected
)

// String returns the canonical English name of the status.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "Accepted"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// ParseStatus maps raw store text onto a Status. Matching ignores case and
// surrounding whitespace and accepts the Spanish labels the line stations write.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "accepted", "aceptada", "aceptado":
		return StatusAccepted
	case "rejected", "rechazada", "rechazado":
		return StatusRejected
	default:
		return StatusUnknown
	}
}

// RawRecord is one row as read from a machine store, before any coercion.
type RawRecord struct {
	Serial   string
	Duration string
	Operator string
	Date     string
	Time     string
	Status   string
}

// Minutes is a duration in minutes that may be absent.
type Minutes struct {
	Value float64
	Valid bool
}

// Event is a normalized production record. Events are passed by value and
// never modified once the normalizer has produced them.
type Event struct {
	Serial    string
	Duration  Minutes
	Operator  string // empty when the store had no operator
	Machine   string // originating store, stamped during normalization
	Date      time.Time
	Clock     time.Duration // time of day since midnight
	HasClock  bool
	Timestamp time.Time // Date + Clock; zero when either part failed to parse
	Status    Status
	RawStatus string
}

// HasDate reports whether the calendar date parsed.
func (e Event) HasDate() bool { return !e.Date.IsZero() }

// HasTimestamp reports whether both date and time of day parsed.
func (e Event) HasTimestamp() bool { return !e.Timestamp.IsZero() }

// Hour returns the hour of day the unit was produced.
func (e Event) Hour() (int, bool) {
	if !e.HasClock {
		return 0, false
	}
	return int(e.Clock / time.Hour), true
}
