package normalize_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/prodboard/internal/domain/model"
	"github.com/okian/prodboard/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw batches from two machines", t, func() {
		batches := []normalize.Batch{
			{
				Machine: "Maquina1",
				Records: []model.RawRecord{
					{Serial: " S0001 ", Duration: "5.5", Operator: "Juan", Date: "2025-03-04", Time: "08:00", Status: "Aceptada"},
					{Serial: "S0002", Duration: "n/a", Operator: "Ana", Date: "2025-03-04", Time: "6:05", Status: "Rechazada"},
				},
			},
			{
				Machine: "Maquina2",
				Records: []model.RawRecord{
					{Serial: "S0003", Duration: "7,25", Operator: "", Date: "2025-03-05 00:00:00", Time: "14:00:30", Status: "scrap"},
					{Serial: "S0004", Duration: "", Operator: "Luis", Date: "not a date", Time: "09:00", Status: "Accepted"},
				},
			},
		}

		Convey("When normalizing", func() {
			res, err := normalize.Normalize(batches)

			Convey("Then events keep batch order then record order", func() {
				So(err, ShouldBeNil)
				So(res.Events, ShouldHaveLength, 4)
				So(res.Events[0].Serial, ShouldEqual, "S0001")
				So(res.Events[0].Machine, ShouldEqual, "Maquina1")
				So(res.Events[2].Machine, ShouldEqual, "Maquina2")
				So(res.Events[3].Serial, ShouldEqual, "S0004")
			})

			Convey("And durations should be coerced or marked absent", func() {
				So(res.Events[0].Duration, ShouldResemble, model.Minutes{Value: 5.5, Valid: true})
				So(res.Events[1].Duration.Valid, ShouldBeFalse)
				So(res.Events[2].Duration, ShouldResemble, model.Minutes{Value: 7.25, Valid: true})
				So(res.Events[3].Duration.Valid, ShouldBeFalse)
				So(res.DurationFailures, ShouldEqual, 1)
				So(res.MissingDurations, ShouldEqual, 1)
			})

			Convey("And timestamps should combine date and time of day", func() {
				So(res.Events[0].Timestamp, ShouldEqual, time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC))
				So(res.Events[1].Timestamp, ShouldEqual, time.Date(2025, 3, 4, 6, 5, 0, 0, time.UTC))
				So(res.Events[2].Timestamp, ShouldEqual, time.Date(2025, 3, 5, 14, 0, 30, 0, time.UTC))
			})

			Convey("And an unparsable date should drop only the timestamp", func() {
				ev := res.Events[3]
				So(ev.HasDate(), ShouldBeFalse)
				So(ev.HasTimestamp(), ShouldBeFalse)
				So(ev.HasClock, ShouldBeTrue)
				So(ev.Status, ShouldEqual, model.StatusAccepted)
				So(res.TimestampFailures, ShouldEqual, 1)
			})

			Convey("And statuses should map onto the closed enum", func() {
				So(res.Events[0].Status, ShouldEqual, model.StatusAccepted)
				So(res.Events[1].Status, ShouldEqual, model.StatusRejected)
				So(res.Events[2].Status, ShouldEqual, model.StatusUnknown)
				So(res.Events[2].RawStatus, ShouldEqual, "scrap")
			})
		})
	})

	Convey("Given no batches at all", t, func() {
		_, err := normalize.Normalize(nil)

		Convey("Then it should report no data", func() {
			So(errors.Is(err, normalize.ErrNoData), ShouldBeTrue)
		})
	})

	Convey("Given a batch with no records", t, func() {
		res, err := normalize.Normalize([]normalize.Batch{{Machine: "Maquina3"}})

		Convey("Then it should succeed with an empty sequence", func() {
			So(err, ShouldBeNil)
			So(res.Events, ShouldBeEmpty)
		})
	})
}

func TestNormalizerOptions(t *testing.T) {
	Convey("Given a normalizer with a custom location and layouts", t, func() {
		loc := time.FixedZone("COT", -5*60*60)
		n := normalize.New(
			normalize.WithLocation(loc),
			normalize.WithDateLayouts("02-01-2006"),
			normalize.WithTimeLayouts("15.04"),
		)

		Convey("When normalizing records in those layouts", func() {
			res, err := n.Normalize([]normalize.Batch{{
				Machine: "M1",
				Records: []model.RawRecord{
					{Serial: "A", Date: "04-03-2025", Time: "22.15", Status: "Accepted"},
					{Serial: "B", Date: "2025-03-04", Time: "22:15", Status: "Accepted"},
				},
			}})

			Convey("Then matching records should be interpreted in that location", func() {
				So(err, ShouldBeNil)
				So(res.Events[0].Timestamp.Equal(time.Date(2025, 3, 4, 22, 15, 0, 0, loc)), ShouldBeTrue)
				So(res.Events[0].Timestamp.Location(), ShouldEqual, loc)
			})

			Convey("And records in other layouts should lose their timestamp", func() {
				So(res.Events[1].HasDate(), ShouldBeFalse)
				So(res.Events[1].HasClock, ShouldBeFalse)
				So(res.TimestampFailures, ShouldEqual, 1)
			})
		})

		Convey("When nil or empty options are given", func() {
			d := normalize.New(normalize.WithLocation(nil), normalize.WithDateLayouts(), normalize.WithTimeLayouts())
			res, err := d.Normalize([]normalize.Batch{{Machine: "M1", Records: []model.RawRecord{{Date: "2025-03-04", Time: "10:00"}}}})

			Convey("Then the defaults should stay in place", func() {
				So(err, ShouldBeNil)
				So(res.Events[0].Timestamp, ShouldEqual, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
			})
		})
	})
}
