// Package normalize turns raw per-machine store rows into one typed event sequence.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
)

// Batch is the raw output of one machine store.
type Batch struct {
	Machine string
	Records []model.RawRecord
}

// Result is the normalized, concatenated event sequence plus coercion counts.
type Result struct {
	Events []model.Event

	// DurationFailures counts non-empty durations that did not parse.
	DurationFailures int
	// MissingDurations counts rows with an empty duration.
	MissingDurations int
	// TimestampFailures counts rows whose date and time did not combine.
	TimestampFailures int
}

// Normalizer converts raw records into events.
type Normalizer struct {
	loc         *time.Location
	dateLayouts []string
	timeLayouts []string
}

var defaultNormalizer = New()

// New creates a Normalizer with the default layouts in UTC.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		loc: time.UTC,
		dateLayouts: []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			time.RFC3339,
			"02/01/2006",
		},
		timeLayouts: []string{
			"15:04:05",
			"15:04",
		},
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Normalize converts batches with the default Normalizer.
func Normalize(batches []Batch) (Result, error) {
	return defaultNormalizer.Normalize(batches)
}

// Normalize stamps each record with its machine and coerces its fields.
// Output order is batch order, then record order within each batch.
// Records that fail coercion are kept with the failed field absent.
func (n *Normalizer) Normalize(batches []Batch) (Result, error) {
	if len(batches) == 0 {
		return Result{}, ErrNoData
	}

	size := 0
	for _, b := range batches {
		size += len(b.Records)
	}

	res := Result{Events: make([]model.Event, 0, size)}
	for _, b := range batches {
		for _, raw := range b.Records {
			ev := n.event(b.Machine, raw)
			if strings.TrimSpace(raw.Duration) == "" {
				res.MissingDurations++
			} else if !ev.Duration.Valid {
				res.DurationFailures++
			}
			if !ev.HasTimestamp() {
				res.TimestampFailures++
			}
			res.Events = append(res.Events, ev)
		}
	}
	return res, nil
}

func (n *Normalizer) event(machine string, raw model.RawRecord) model.Event {
	ev := model.Event{
		Serial:    strings.TrimSpace(raw.Serial),
		Duration:  parseMinutes(raw.Duration),
		Operator:  strings.TrimSpace(raw.Operator),
		Machine:   machine,
		Status:    model.ParseStatus(raw.Status),
		RawStatus: strings.TrimSpace(raw.Status),
	}

	if d, ok := n.parseDate(raw.Date); ok {
		ev.Date = d
	}
	if c, ok := n.parseClock(raw.Time); ok {
		ev.Clock = c
		ev.HasClock = true
	}
	if ev.HasDate() && ev.HasClock {
		y, m, d := ev.Date.Date()
		h := int(ev.Clock / time.Hour)
		mi := int(ev.Clock % time.Hour / time.Minute)
		sec := int(ev.Clock % time.Minute / time.Second)
		ev.Timestamp = time.Date(y, m, d, h, mi, sec, 0, n.loc)
	}
	return ev
}

func parseMinutes(raw string) model.Minutes {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Minutes{}
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Minutes{}
	}
	return model.Minutes{Value: v, Valid: true}
}

func (n *Normalizer) parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range n.dateLayouts {
		t, err := time.ParseInLocation(layout, s, n.loc)
		if err != nil {
			continue
		}
		y, m, d := t.In(n.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, n.loc), true
	}
	return time.Time{}, false
}

func (n *Normalizer) parseClock(raw string) (time.Duration, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, layout := range n.timeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, true
	}
	return 0, false
}
