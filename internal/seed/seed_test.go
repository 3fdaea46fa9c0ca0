package seed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/prodboard/internal/adapters/repository"
	"github.com/okian/prodboard/internal/config"
	"github.com/okian/prodboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(bytes.NewBuffer(nil))); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	ref := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	Convey("Given a CSV seed run", t, func() {
		root := t.TempDir()
		cfg := &Config{
			Dir:        filepath.Join(root, "data"),
			Format:     "csv",
			Records:    120,
			Days:       7,
			Seed:       3,
			Reference:  ref,
			ConfigFile: filepath.Join(root, "prodboard.yaml"),
		}
		stats, err := Run(context.Background(), cfg)
		So(err, ShouldBeNil)

		Convey("Then every machine should have a store holding its records", func() {
			So(stats.Machines, ShouldEqual, 3)
			So(stats.Records, ShouldEqual, 120)
			store := repository.NewFileStore(cfg.Dir)
			ms, err := store.Machines(context.Background())
			So(err, ShouldBeNil)
			So(ms, ShouldResemble, []string{"Maquina1", "Maquina2", "Maquina3"})
			for _, m := range ms {
				recs, err := store.Load(context.Background(), m)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, stats.PerMachine[m])
			}
		})

		Convey("And the written config should load into the dashboard config", func() {
			t.Setenv(config.EnvConfig, cfg.ConfigFile)
			loaded, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(loaded.StoreDriver, ShouldEqual, config.DriverFile)
			So(loaded.DataDir, ShouldEqual, cfg.Dir)
			So(loaded.Machines, ShouldResemble, []string{"Maquina1", "Maquina2", "Maquina3"})
		})

		Convey("And the stats should print per machine", func() {
			var buf bytes.Buffer
			PrintStats(&buf, stats)
			So(buf.String(), ShouldContainSubstring, "Maquina1")
			So(buf.String(), ShouldContainSubstring, "total")
		})
	})

	Convey("Given an XLSX seed run without a config file", t, func() {
		root := t.TempDir()
		cfg := &Config{Dir: root, Format: "xlsx", Records: 10, Days: 1, Seed: 1, Reference: ref}
		_, err := Run(context.Background(), cfg)
		So(err, ShouldBeNil)

		Convey("Then workbooks should be written", func() {
			_, err := os.Stat(filepath.Join(root, "Maquina1.xlsx"))
			So(err, ShouldBeNil)
		})
	})

	Convey("Given an unknown format", t, func() {
		_, err := Run(context.Background(), &Config{Dir: t.TempDir(), Format: "ods", Records: 1, Reference: ref})
		So(err, ShouldNotBeNil)
	})

	Convey("Given a help request", t, func() {
		var buf bytes.Buffer
		ShowHelp(&buf)
		So(buf.String(), ShouldContainSubstring, "-format")
	})
}
