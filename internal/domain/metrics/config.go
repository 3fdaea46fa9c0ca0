package metrics

import "fmt"

// Default thresholds and shift boundaries.
const (
	DefaultDurationCeiling      = 6.0
	DefaultRejectionRateCeiling = 10.0

	DefaultMorningStart   = 6
	DefaultMorningEnd     = 14
	DefaultAfternoonStart = 14
	DefaultAfternoonEnd   = 22

	hoursPerDay = 24
)

// Shift is the production shift an hour of day belongs to.
type Shift int

// Shifts in display order. Night is the catch-all.
const (
	ShiftMorning Shift = iota
	ShiftAfternoon
	ShiftNight
)

// String returns the shift label.
func (s Shift) String() string {
	switch s {
	case ShiftMorning:
		return "Morning"
	case ShiftAfternoon:
		return "Afternoon"
	default:
		return "Night"
	}
}

// ShiftBounds holds the half-open hour ranges [start, end) of the two
// explicit shifts. Hours outside both ranges are Night.
type ShiftBounds struct {
	MorningStart   int
	MorningEnd     int
	AfternoonStart int
	AfternoonEnd   int
}

// Classify returns the shift for an hour of day. It depends only on the hour.
func (b ShiftBounds) Classify(hour int) Shift {
	switch {
	case hour >= b.MorningStart && hour < b.MorningEnd:
		return ShiftMorning
	case hour >= b.AfternoonStart && hour < b.AfternoonEnd:
		return ShiftAfternoon
	default:
		return ShiftNight
	}
}

// Validate checks that both ranges lie within a day and do not overlap.
// Gaps are allowed; they fall into Night.
func (b ShiftBounds) Validate() error {
	for _, h := range []int{b.MorningStart, b.MorningEnd, b.AfternoonStart, b.AfternoonEnd} {
		if h < 0 || h > hoursPerDay {
			return fmt.Errorf("%w: hour %d outside 0..%d", ErrInvalidShiftBounds, h, hoursPerDay)
		}
	}
	if b.MorningStart > b.MorningEnd || b.AfternoonStart > b.AfternoonEnd {
		return fmt.Errorf("%w: start after end", ErrInvalidShiftBounds)
	}
	if b.MorningStart < b.AfternoonEnd && b.AfternoonStart < b.MorningEnd &&
		b.MorningStart != b.MorningEnd && b.AfternoonStart != b.AfternoonEnd {
		return fmt.Errorf("%w: morning [%d,%d) overlaps afternoon [%d,%d)",
			ErrInvalidShiftBounds, b.MorningStart, b.MorningEnd, b.AfternoonStart, b.AfternoonEnd)
	}
	return nil
}

// Config is the immutable configuration of the metrics engine.
type Config struct {
	// DurationCeiling is the accepted-mean-duration alert ceiling in minutes.
	DurationCeiling float64
	// RejectionRateCeiling is the rejection-rate alert ceiling in percent.
	RejectionRateCeiling float64
	Shifts               ShiftBounds
}

// DefaultConfig returns the documented defaults: ceilings 6 min and 10 %,
// morning 6-14, afternoon 14-22, night the remainder.
func DefaultConfig() Config {
	return Config{
		DurationCeiling:      DefaultDurationCeiling,
		RejectionRateCeiling: DefaultRejectionRateCeiling,
		Shifts: ShiftBounds{
			MorningStart:   DefaultMorningStart,
			MorningEnd:     DefaultMorningEnd,
			AfternoonStart: DefaultAfternoonStart,
			AfternoonEnd:   DefaultAfternoonEnd,
		},
	}
}

// Validate checks thresholds and shift bounds.
func (c Config) Validate() error {
	if c.DurationCeiling < 0 || c.RejectionRateCeiling < 0 {
		return fmt.Errorf("%w: ceilings must not be negative", ErrInvalidThreshold)
	}
	return c.Shifts.Validate()
}
