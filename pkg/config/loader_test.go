package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaultConfig(t *testing.T) {
	conf, err := NewPlayerConfig("../../configs")
	if err != nil {
		t.Fatal(err)
	}
	if conf.Engine.Width != 640 || conf.Engine.Height != 360 {
		t.Errorf("wrong size %vx%v", conf.Engine.Width, conf.Engine.Height)
	}
	if !conf.Player.Looping || conf.Engine.ReleaseTimeout != time.Second {
		t.Errorf("wrong values %+v", conf)
	}
}

func TestConfigEnv(t *testing.T) {
	dir := t.TempDir()
	doc := "engine:\n  width: 100\n  height: 50\nscene:\n  path: a.yaml\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLAYER_ENGINE_HEIGHT", "75")
	t.Setenv("PLAYER_CAPTURE_EVERY", "5")

	var out PlayerConfig
	if err := LoadConfig(&out, dir); err != nil {
		t.Fatal(err)
	}
	if out.Engine.Width != 100 || out.Engine.Height != 75 {
		t.Errorf("wrong size %vx%v", out.Engine.Width, out.Engine.Height)
	}
	if out.Scene.Path != "a.yaml" || out.Capture.Every != 5 {
		t.Errorf("wrong values %+v", out)
	}
	// defaults
	if out.Engine.Backend != "auto" || out.Scene.Settle != 200*time.Millisecond || out.Remote.Path != "/ws" {
		t.Errorf("no defaults %+v", out)
	}
}

func TestValidate(t *testing.T) {
	valid := func() PlayerConfig {
		var c PlayerConfig
		c.Engine.Backend, c.Engine.Width, c.Engine.Height, c.Engine.RefreshRate = "software", 1, 1, 60
		return c
	}
	tests := []struct {
		name   string
		modify func(c *PlayerConfig)
		err    bool
	}{
		{name: "ok", modify: func(c *PlayerConfig) {}},
		{name: "backend", modify: func(c *PlayerConfig) { c.Engine.Backend = "dx12" }, err: true},
		{name: "size", modify: func(c *PlayerConfig) { c.Engine.Width = 0 }, err: true},
		{name: "refresh", modify: func(c *PlayerConfig) { c.Engine.RefreshRate = -1 }, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := valid()
			test.modify(&c)
			if err := c.Validate(); (err != nil) != test.err {
				t.Errorf("unexpected result %v", err)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	var c PlayerConfig
	c.Engine.Width = 640
	c.Scene.Path = "a.yaml"
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.ParseFlags(fs)
	if err := fs.Parse([]string{"--width", "1280", "--offscreen", "-d"}); err != nil {
		t.Fatal(err)
	}
	if c.Engine.Width != 1280 || !c.Player.Offscreen || !c.Player.Debug {
		t.Errorf("flags are not applied %+v", c)
	}
	if c.Scene.Path != "a.yaml" {
		t.Errorf("config value is lost")
	}
}
