package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/firstlevel/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 8<<20)
			convey.So(cfg.DelimiterRune(), convey.ShouldEqual, '\t')
			convey.So(cfg.TrialTypeColumn, convey.ShouldEqual, "trial_type")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a config with an empty delimiter", t, func() {
		cfg := config.New()
		cfg.Delimiter = ""

		convey.Convey("Then DelimiterRune falls back to tab", func() {
			convey.So(cfg.DelimiterRune(), convey.ShouldEqual, '\t')
		})
	})
}
