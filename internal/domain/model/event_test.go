package model_test

import (
	"testing"
	"time"

	model "github.com/okian/prodboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseStatus(t *testing.T) {
	convey.Convey("Given raw status text from a machine store", t, func() {
		convey.Convey("When the text is a known English label", func() {
			convey.So(model.ParseStatus("Accepted"), convey.ShouldEqual, model.StatusAccepted)
			convey.So(model.ParseStatus("Rejected"), convey.ShouldEqual, model.StatusRejected)
		})

		convey.Convey("When the text is a Spanish label with odd casing and padding", func() {
			convey.So(model.ParseStatus("  ACEPTADA "), convey.ShouldEqual, model.StatusAccepted)
			convey.So(model.ParseStatus("rechazada"), convey.ShouldEqual, model.StatusRejected)
		})

		convey.Convey("When the text is anything else", func() {
			convey.Convey("Then it should become Unknown rather than fail", func() {
				convey.So(model.ParseStatus(""), convey.ShouldEqual, model.StatusUnknown)
				convey.So(model.ParseStatus("rework"), convey.ShouldEqual, model.StatusUnknown)
			})
		})
	})
}

func TestStatusString(t *testing.T) {
	convey.Convey("Given each status", t, func() {
		convey.So(model.StatusAccepted.String(), convey.ShouldEqual, "Accepted")
		convey.So(model.StatusRejected.String(), convey.ShouldEqual, "Rejected")
		convey.So(model.StatusUnknown.String(), convey.ShouldEqual, "Unknown")
		convey.So(model.Status(42).String(), convey.ShouldEqual, "Unknown")
	})
}

func TestEvent(t *testing.T) {
	convey.Convey("Given an Event struct", t, func() {
		convey.Convey("When it carries a full date and time of day", func() {
			date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
			clock := 13*time.Hour + 59*time.Minute
			event := model.Event{
				Serial:    "S0001",
				Machine:   "Maquina1",
				Date:      date,
				Clock:     clock,
				HasClock:  true,
				Timestamp: date.Add(clock),
			}

			convey.Convey("Then the helpers should report it as fully timed", func() {
				hour, ok := event.Hour()
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(hour, convey.ShouldEqual, 13)
				convey.So(event.HasDate(), convey.ShouldBeTrue)
				convey.So(event.HasTimestamp(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When it is the zero value", func() {
			event := model.Event{}

			convey.Convey("Then it should have no date, clock or timestamp", func() {
				_, ok := event.Hour()
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(event.HasDate(), convey.ShouldBeFalse)
				convey.So(event.HasTimestamp(), convey.ShouldBeFalse)
				convey.So(event.Duration.Valid, convey.ShouldBeFalse)
				convey.So(event.Status, convey.ShouldEqual, model.StatusUnknown)
			})
		})
	})
}
