package metrics_test

import (
	"errors"
	"testing"

	"github.com/okian/prodboard/internal/domain/metrics"
	"github.com/okian/prodboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestShiftClassification(t *testing.T) {
	Convey("Given the default shift bounds", t, func() {
		b := metrics.DefaultConfig().Shifts

		Convey("Then boundary hours should classify as documented", func() {
			So(b.Classify(6), ShouldEqual, metrics.ShiftMorning)
			So(b.Classify(13), ShouldEqual, metrics.ShiftMorning)
			So(b.Classify(14), ShouldEqual, metrics.ShiftAfternoon)
			So(b.Classify(21), ShouldEqual, metrics.ShiftAfternoon)
			So(b.Classify(22), ShouldEqual, metrics.ShiftNight)
			So(b.Classify(3), ShouldEqual, metrics.ShiftNight)
			So(b.Classify(5), ShouldEqual, metrics.ShiftNight)
		})

		Convey("And 13:59 and 14:00 events should fall on either side of the boundary", func() {
			before := at("M1", "A", model.StatusAccepted, 0, false, "13:59")
			after := at("M1", "A", model.StatusAccepted, 0, false, "14:00")
			h1, _ := before.Hour()
			h2, _ := after.Hour()
			So(b.Classify(h1), ShouldEqual, metrics.ShiftMorning)
			So(b.Classify(h2), ShouldEqual, metrics.ShiftAfternoon)
		})
	})

	Convey("Given bounds with a gap between morning and afternoon", t, func() {
		b := metrics.ShiftBounds{MorningStart: 7, MorningEnd: 12, AfternoonStart: 13, AfternoonEnd: 18}

		Convey("Then hours in the gap should be Night", func() {
			So(b.Validate(), ShouldBeNil)
			So(b.Classify(12), ShouldEqual, metrics.ShiftNight)
			So(b.Classify(18), ShouldEqual, metrics.ShiftNight)
		})
	})

	Convey("Given shift labels", t, func() {
		So(metrics.ShiftMorning.String(), ShouldEqual, "Morning")
		So(metrics.ShiftAfternoon.String(), ShouldEqual, "Afternoon")
		So(metrics.ShiftNight.String(), ShouldEqual, "Night")
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given engine configurations", t, func() {
		Convey("Then the defaults should be valid", func() {
			cfg := metrics.DefaultConfig()
			So(cfg.Validate(), ShouldBeNil)
			So(cfg.DurationCeiling, ShouldEqual, 6)
			So(cfg.RejectionRateCeiling, ShouldEqual, 10)
		})

		Convey("And hours outside the day should be rejected", func() {
			cfg := metrics.DefaultConfig()
			cfg.Shifts.AfternoonEnd = 25
			So(errors.Is(cfg.Validate(), metrics.ErrInvalidShiftBounds), ShouldBeTrue)
		})

		Convey("And inverted ranges should be rejected", func() {
			cfg := metrics.DefaultConfig()
			cfg.Shifts.MorningStart = 15
			So(errors.Is(cfg.Validate(), metrics.ErrInvalidShiftBounds), ShouldBeTrue)
		})

		Convey("And overlapping ranges should be rejected", func() {
			cfg := metrics.DefaultConfig()
			cfg.Shifts.MorningEnd = 16
			So(errors.Is(cfg.Validate(), metrics.ErrInvalidShiftBounds), ShouldBeTrue)
		})

		Convey("And negative ceilings should be rejected", func() {
			cfg := metrics.DefaultConfig()
			cfg.RejectionRateCeiling = -1
			So(errors.Is(cfg.Validate(), metrics.ErrInvalidThreshold), ShouldBeTrue)
		})
	})
}

func TestEngineCompute(t *testing.T) {
	Convey("Given an engine with the default configuration", t, func() {
		engine := metrics.New(metrics.DefaultConfig())

		Convey("When computing the reference scenario", func() {
			report := engine.Compute([]model.Event{
				at("M1", "Juan", model.StatusAccepted, 5, true, "08:00"),
				at("M1", "Ana", model.StatusRejected, 0, false, "09:00"),
				at("M1", "Juan", model.StatusAccepted, 7, true, "08:30"),
			})
			s := report.Snapshot

			Convey("Then the snapshot should carry the KPIs and rankings", func() {
				So(s.Total, ShouldEqual, 3)
				So(s.Rejected, ShouldEqual, 1)
				So(s.RejectionRate, ShouldEqual, 33.33)
				So(s.AcceptedMeanDuration, ShouldEqual, 6.0)
				So(s.MeanInterArrival, ShouldEqual, 30.0)
				So(s.Operators, ShouldResemble, []metrics.OperatorCount{{Operator: "Juan", Count: 2}, {Operator: "Ana", Count: 1}})
				So(s.ShiftTotals[metrics.ShiftMorning], ShouldEqual, 3)
				So(s.Efficiency, ShouldHaveLength, 2)
			})

			Convey("And the rejection-rate alert should be raised", func() {
				So(report.Alerts.RejectionRateExceeded, ShouldBeTrue)
				So(report.Alerts.DurationExceeded, ShouldBeFalse)
				So(report.Alerts.Any(), ShouldBeTrue)
			})

			Convey("And the chart series should be populated", func() {
				So(report.Status, ShouldHaveLength, 2)
				So(report.MachineOperator, ShouldHaveLength, 2)
				So(report.OperatorDuration, ShouldHaveLength, 1)
			})
		})

		Convey("When computing over an empty set", func() {
			report := engine.Compute(nil)

			Convey("Then every KPI should be zero and no alert raised", func() {
				So(report.Snapshot.Total, ShouldEqual, 0)
				So(report.Snapshot.AcceptedMeanDuration, ShouldEqual, 0)
				So(report.Snapshot.RejectionRate, ShouldEqual, 0)
				So(report.Snapshot.MeanInterArrival, ShouldEqual, 0)
				So(report.Alerts.Any(), ShouldBeFalse)
			})
		})
	})

	Convey("Given ceilings exactly at the snapshot values", t, func() {
		engine := metrics.New(metrics.Config{
			DurationCeiling:      6,
			RejectionRateCeiling: 33.33,
			Shifts:               metrics.DefaultConfig().Shifts,
		})

		Convey("Then equality should not alert", func() {
			alerts := engine.Alerts(metrics.Snapshot{AcceptedMeanDuration: 6, RejectionRate: 33.33})
			So(alerts.Any(), ShouldBeFalse)
			So(engine.Config().RejectionRateCeiling, ShouldEqual, 33.33)
		})

		Convey("And exceeding either ceiling should alert independently", func() {
			So(engine.Alerts(metrics.Snapshot{AcceptedMeanDuration: 6.01}).DurationExceeded, ShouldBeTrue)
			So(engine.Alerts(metrics.Snapshot{RejectionRate: 40}).DurationExceeded, ShouldBeFalse)
			So(engine.Alerts(metrics.Snapshot{RejectionRate: 40}).RejectionRateExceeded, ShouldBeTrue)
		})
	})
}
