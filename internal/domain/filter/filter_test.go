package filter_test

import (
	"testing"
	"time"

	"github.com/okian/prodboard/internal/domain/filter"
	"github.com/okian/prodboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEvents() []model.Event {
	return []model.Event{
		{Serial: "S0001", Operator: "Juan", Machine: "M1", Date: day(2025, 3, 1)},
		{Serial: "s0002", Operator: "Ana", Machine: "M1", Date: day(2025, 3, 2)},
		{Serial: "X0003", Operator: "Juan", Machine: "M2", Date: day(2025, 3, 3)},
		{Serial: "", Operator: "", Machine: "M2", Date: day(2025, 3, 3)},
		{Serial: "S0005", Operator: "Luis", Machine: "M3"},
	}
}

func serials(events []model.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Serial
	}
	return out
}

func TestApply(t *testing.T) {
	Convey("Given a sequence of events", t, func() {
		events := sampleEvents()

		Convey("When the criteria restrict nothing", func() {
			c := filter.Criteria{}
			got := filter.Apply(events, c)

			Convey("Then every event should be kept in input order", func() {
				So(c.IsZero(), ShouldBeTrue)
				So(got, ShouldResemble, events)
			})

			Convey("And the result should not alias the input", func() {
				got[0].Serial = "changed"
				So(events[0].Serial, ShouldEqual, "S0001")
			})
		})

		Convey("When filtering by an inclusive date range", func() {
			got := filter.Apply(events, filter.Criteria{From: day(2025, 3, 2), To: day(2025, 3, 3)})

			Convey("Then both bounds should be included and undated events dropped", func() {
				So(serials(got), ShouldResemble, []string{"s0002", "X0003", ""})
			})
		})

		Convey("When bounds carry a time of day", func() {
			got := filter.Apply(events, filter.Criteria{
				From: time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC),
				To:   time.Date(2025, 3, 1, 0, 1, 0, 0, time.UTC),
			})

			Convey("Then only the date portion should be compared", func() {
				So(serials(got), ShouldResemble, []string{"S0001"})
			})
		})

		Convey("When only a lower bound is set", func() {
			got := filter.Apply(events, filter.Criteria{From: day(2025, 3, 3)})

			Convey("Then the upper side should be open", func() {
				So(serials(got), ShouldResemble, []string{"X0003", ""})
			})
		})

		Convey("When the range is inverted", func() {
			got := filter.Apply(events, filter.Criteria{From: day(2025, 3, 3), To: day(2025, 3, 1)})

			Convey("Then the result should be empty, not an error", func() {
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When filtering by an operator allow-list", func() {
			got := filter.Apply(events, filter.Criteria{Operators: []string{"Juan", " Luis "}})

			Convey("Then only listed operators should remain", func() {
				So(serials(got), ShouldResemble, []string{"S0001", "X0003", "S0005"})
			})
		})

		Convey("When filtering by serial substring", func() {
			got := filter.Apply(events, filter.Criteria{Serial: "s000"})

			Convey("Then matching should ignore case and skip empty serials", func() {
				So(serials(got), ShouldResemble, []string{"S0001", "s0002", "S0005"})
			})
		})

		Convey("When every axis is restricted", func() {
			c := filter.Criteria{
				From:      day(2025, 3, 1),
				To:        day(2025, 3, 31),
				Operators: []string{"Juan"},
				Serial:    "S",
			}
			got := filter.Apply(events, c)

			Convey("Then the axes should combine as a logical AND", func() {
				So(c.Predicates(), ShouldHaveLength, 3)
				So(serials(got), ShouldResemble, []string{"S0001"})
			})
		})

		Convey("When the input is empty", func() {
			got := filter.Apply(nil, filter.Criteria{Serial: "S"})

			Convey("Then the result should be an empty, non-nil slice", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})
	})
}

func TestPredicates(t *testing.T) {
	Convey("Given individual predicates", t, func() {
		ev := model.Event{Serial: "AbC-9", Operator: "Ana", Date: day(2025, 1, 10)}

		Convey("Then a blank allow-list should keep everything", func() {
			So(filter.ByOperators([]string{" "})(ev), ShouldBeTrue)
		})

		Convey("And an absent operator should never match a non-empty allow-list", func() {
			So(filter.ByOperators([]string{"Ana"})(model.Event{}), ShouldBeFalse)
		})

		Convey("And a blank serial query should keep everything", func() {
			So(filter.BySerial("  ")(model.Event{}), ShouldBeTrue)
		})

		Convey("And serial matching should be case-insensitive", func() {
			So(filter.BySerial("bc-9")(ev), ShouldBeTrue)
			So(filter.BySerial("zz")(ev), ShouldBeFalse)
		})

		Convey("And open date ranges should still require a date", func() {
			So(filter.ByDateRange(time.Time{}, time.Time{})(ev), ShouldBeTrue)
			So(filter.ByDateRange(time.Time{}, time.Time{})(model.Event{}), ShouldBeFalse)
		})
	})
}
