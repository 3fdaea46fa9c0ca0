// Package demodata generates simulated production records for demos and the
// seed tool.
package demodata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
)

// Defaults of the simulated plant.
const (
	DefaultRecords = 500
	DefaultDays    = 30

	firstHour   = 6
	lastHour    = 22
	minDuration = 3.0
	maxDuration = 10.0
)

var (
	// DefaultMachines are the simulated machine names.
	DefaultMachines = []string{"Maquina1", "Maquina2", "Maquina3"}
	// DefaultOperators are the simulated operator names.
	DefaultOperators = []string{"Juan", "Pedro", "Ana", "Luis", "Maria"}
	// DefaultStatuses are the status labels the stations write.
	DefaultStatuses = []string{"Aceptada", "Rechazada"}
)

// Config describes the data set to generate.
type Config struct {
	Records   int
	Days      int
	Machines  []string
	Operators []string
	Statuses  []string
	// Reference is the newest possible record date.
	Reference time.Time
	// Seed makes generation repeatable.
	Seed uint64
}

// Option applies a configuration option to a Config.
type Option func(*Config)

// WithRecords sets the number of records across all machines.
func WithRecords(n int) Option {
	return func(c *Config) { c.Records = n }
}

// WithDays sets how many days back from the reference dates may fall.
func WithDays(n int) Option {
	return func(c *Config) { c.Days = n }
}

// WithMachines sets the machine names.
func WithMachines(m ...string) Option {
	return func(c *Config) {
		if len(m) > 0 {
			c.Machines = m
		}
	}
}

// WithOperators sets the operator names.
func WithOperators(o ...string) Option {
	return func(c *Config) {
		if len(o) > 0 {
			c.Operators = o
		}
	}
}

// WithReference sets the newest possible record date.
func WithReference(t time.Time) Option {
	return func(c *Config) { c.Reference = t }
}

// WithSeed sets the random seed.
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

// NewConfig returns the default plant with opts applied.
func NewConfig(opts ...Option) Config {
	c := Config{
		Records:   DefaultRecords,
		Days:      DefaultDays,
		Machines:  DefaultMachines,
		Operators: DefaultOperators,
		Statuses:  DefaultStatuses,
		Reference: time.Now(),
		Seed:      1,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Validate reports configurations Generate cannot honor.
func (c Config) Validate() error {
	switch {
	case c.Records < 0:
		return fmt.Errorf("%w: negative record count %d", ErrInvalidConfig, c.Records)
	case c.Days < 0:
		return fmt.Errorf("%w: negative day span %d", ErrInvalidConfig, c.Days)
	case len(c.Machines) == 0:
		return fmt.Errorf("%w: no machines", ErrInvalidConfig)
	case len(c.Operators) == 0:
		return fmt.Errorf("%w: no operators", ErrInvalidConfig)
	case len(c.Statuses) == 0:
		return fmt.Errorf("%w: no statuses", ErrInvalidConfig)
	}
	return nil
}

// Generate draws c.Records records and deals each to a random machine.
// Serials are S0000, S0001, ... in draw order; dates fall within c.Days days
// before c.Reference, times between 06:00 and 22:59, durations between 3 and
// 10 minutes with two decimals. Every configured machine appears in the
// result, possibly with no records. The same Config yields the same data.
func Generate(c Config) (map[string][]model.RawRecord, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
	ref := time.Date(c.Reference.Year(), c.Reference.Month(), c.Reference.Day(), 0, 0, 0, 0, c.Reference.Location())

	out := make(map[string][]model.RawRecord, len(c.Machines))
	for _, m := range c.Machines {
		out[m] = []model.RawRecord{}
	}
	width := serialWidth(c.Records)
	for i := 0; i < c.Records; i++ {
		day := ref.AddDate(0, 0, -rng.IntN(c.Days+1))
		hour := firstHour + rng.IntN(lastHour-firstHour+1)
		minute := rng.IntN(60)
		dur := minDuration + rng.Float64()*(maxDuration-minDuration)

		r := model.RawRecord{
			Serial:   fmt.Sprintf("S%0*d", width, i),
			Duration: strconv.FormatFloat(math.Round(dur*100)/100, 'f', 2, 64),
			Operator: c.Operators[rng.IntN(len(c.Operators))],
			Date:     day.Format("2006-01-02"),
			Time:     fmt.Sprintf("%02d:%02d", hour, minute),
			Status:   c.Statuses[rng.IntN(len(c.Statuses))],
		}
		m := c.Machines[rng.IntN(len(c.Machines))]
		out[m] = append(out[m], r)
	}
	return out, nil
}

// serialWidth pads serials to at least four digits.
func serialWidth(n int) int {
	w := len(strconv.Itoa(max(n-1, 0)))
	return max(w, 4)
}
