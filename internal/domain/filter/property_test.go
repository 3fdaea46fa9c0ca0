package filter_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/prodboard/internal/domain/filter"
	"github.com/okian/prodboard/internal/domain/model"
	"github.com/stretchr/testify/require"
)

const propertyRounds = 300

var (
	propOperators = []string{"Juan", "Pedro", "Ana", "Luis", "Maria", ""}
	propSerials   = []string{"S0001", "s0102", "AB-77", "x9", "", "S1000"}
	propQueries   = []string{"", "s0", "AB", "9", "zz", "1"}
)

func randomEvents(rng *rand.Rand, n int) []model.Event {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	events := make([]model.Event, n)
	for i := range events {
		ev := model.Event{
			Serial:   propSerials[rng.Intn(len(propSerials))],
			Operator: propOperators[rng.Intn(len(propOperators))],
			Machine:  fmt.Sprintf("M%d", rng.Intn(3)+1),
		}
		if rng.Intn(10) > 0 {
			ev.Date = base.AddDate(0, 0, rng.Intn(28))
		}
		events[i] = ev
	}
	return events
}

func randomCriteria(rng *rand.Rand) filter.Criteria {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	var c filter.Criteria
	if rng.Intn(2) == 0 {
		c.From = base.AddDate(0, 0, rng.Intn(28))
	}
	if rng.Intn(2) == 0 {
		c.To = base.AddDate(0, 0, rng.Intn(28))
	}
	for _, op := range propOperators {
		if op != "" && rng.Intn(3) == 0 {
			c.Operators = append(c.Operators, op)
		}
	}
	c.Serial = propQueries[rng.Intn(len(propQueries))]
	return c
}

func TestApplyIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < propertyRounds; i++ {
		events := randomEvents(rng, rng.Intn(40))
		c := randomCriteria(rng)

		once := filter.Apply(events, c)
		twice := filter.Apply(once, c)
		require.Equal(t, once, twice, "round %d criteria %+v", i, c)
	}
}

func TestApplyIsOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < propertyRounds; i++ {
		events := randomEvents(rng, rng.Intn(40))
		c := randomCriteria(rng)

		preds := c.Predicates()
		want := filter.Apply(events, c)

		reversed := make([]filter.Predicate, len(preds))
		for j := range preds {
			reversed[len(preds)-1-j] = preds[j]
		}
		require.Equal(t, want, filter.Select(events, reversed...), "round %d", i)

		chained := events
		for j := len(preds) - 1; j >= 0; j-- {
			chained = filter.Select(chained, preds[j])
		}
		require.Equal(t, want, chained, "round %d", i)

		dateThenOperator := filter.Apply(filter.Apply(events, filter.Criteria{From: c.From, To: c.To}), filter.Criteria{Operators: c.Operators})
		operatorThenDate := filter.Apply(filter.Apply(events, filter.Criteria{Operators: c.Operators}), filter.Criteria{From: c.From, To: c.To})
		require.Equal(t, dateThenOperator, operatorThenDate, "round %d", i)
	}
}

func TestApplyKeepsOnlyMatchingEvents(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	for i := 0; i < propertyRounds; i++ {
		events := randomEvents(rng, rng.Intn(40))
		c := randomCriteria(rng)

		got := filter.Apply(events, c)
		require.LessOrEqual(t, len(got), len(events))
		for _, ev := range got {
			for _, p := range c.Predicates() {
				require.True(t, p(ev))
			}
		}
	}
}
