package config_test

import (
	"runtime"
	"testing"

	"github.com/ecliptiq/transits/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*4)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 500_000)
			convey.So(cfg.ShardCount, convey.ShouldEqual, 16)
			convey.So(cfg.StoreCapacity, convey.ShouldEqual, 100_000)
			convey.So(cfg.MinuteTolArcmin, convey.ShouldEqual, 1.59)
			convey.So(cfg.MarsDominance, convey.ShouldBeTrue)
			convey.So(cfg.DefaultSect, convey.ShouldEqual, "auto")
			convey.So(cfg.ApplyingOrbs, convey.ShouldBeNil)
			convey.So(cfg.SeparatingOrbs, convey.ShouldBeNil)
		})
	})
}
