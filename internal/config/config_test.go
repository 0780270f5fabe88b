package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := New()

		Convey("Then every field carries its documented default", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.DataPath, ShouldEqual, "data/draft_picks.csv")
			So(cfg.CacheCapacity, ShouldEqual, 1024)
			So(cfg.DispatchThresholdMS, ShouldEqual, 50)
			So(cfg.DispatchMargin, ShouldEqual, 0.20)
		})

		Convey("And it validates", func() {
			So(cfg.validate(), ShouldBeNil)
		})
	})
}

func TestLoadDefaults(t *testing.T) {
	Convey("Given no overrides", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then defaults come back", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.CacheCapacity, ShouldEqual, 1024)
		})
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DRAFTLAB_ADDR", ":9090")
	t.Setenv("DRAFTLAB_CACHE_CAPACITY", "256")
	t.Setenv("DRAFTLAB_LOG_LEVEL", "debug")

	Convey("Given environment overrides", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.CacheCapacity, ShouldEqual, 256)
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.DataPath, ShouldEqual, "data/draft_picks.csv")
		})
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "addr: \":7070\"\ndata_path: /var/lib/draftlab/picks.csv\ndispatch_margin: 0.5\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DRAFTLAB_CONFIG", path)

	Convey("Given a YAML config file", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then file values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.DataPath, ShouldEqual, "/var/lib/draftlab/picks.csv")
			So(cfg.DispatchMargin, ShouldEqual, 0.5)
		})
	})
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DRAFTLAB_CONFIG", path)
	t.Setenv("DRAFTLAB_ADDR", ":6060")

	Convey("Given both a config file and an env override", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then env beats file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("DRAFTLAB_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	Convey("Given a missing config file", t, func() {
		_, err := Load(context.Background())

		Convey("Then loading fails with ErrLoadConfig", func() {
			So(err, ShouldWrap, ErrLoadConfig)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given invalid configurations", t, func() {
		cases := []struct {
			name   string
			mutate func(*Config)
		}{
			{"an empty addr", func(c *Config) { c.Addr = "" }},
			{"an empty data path", func(c *Config) { c.DataPath = "" }},
			{"a negative capacity", func(c *Config) { c.CacheCapacity = -1 }},
			{"a negative threshold", func(c *Config) { c.DispatchThresholdMS = -5 }},
			{"a negative margin", func(c *Config) { c.DispatchMargin = -0.1 }},
			{"a margin of one", func(c *Config) { c.DispatchMargin = 1.0 }},
			{"a margin above one", func(c *Config) { c.DispatchMargin = 1.5 }},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is rejected", func() {
				cfg := New()
				tc.mutate(cfg)
				So(cfg.validate(), ShouldWrap, ErrInvalidConfig)
			})
		}
	})
}
