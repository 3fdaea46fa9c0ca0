package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/prodboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store with two machines", t, func() {
		seed := []model.RawRecord{{Serial: "S1"}, {Serial: "S2"}}
		store := NewMemoryStore(map[string][]model.RawRecord{"B": seed, "A": nil})
		ctx := context.Background()

		Convey("Then machines should be sorted", func() {
			ms, err := store.Machines(ctx)
			So(err, ShouldBeNil)
			So(ms, ShouldResemble, []string{"A", "B"})
		})

		Convey("And loaded batches should be copies", func() {
			seed[0].Serial = "changed"
			recs, err := store.Load(ctx, "B")
			So(err, ShouldBeNil)
			So(recs[0].Serial, ShouldEqual, "S1")

			recs[1].Serial = "mutated"
			again, _ := store.Load(ctx, "B")
			So(again[1].Serial, ShouldEqual, "S2")
		})

		Convey("And a machine without records should load as empty", func() {
			recs, err := store.Load(ctx, "A")
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("And an unknown machine should be ErrNotFound", func() {
			_, err := store.Load(ctx, "C")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("And a cancelled context should abort", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.Load(cctx, "B")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
