package main

import (
	"testing"

	"github.com/framecast/player/pkg/native"
)

func TestLoadConfig(t *testing.T) {
	conf, err := loadConfig([]string{"-c", "../../configs", "--offscreen", "--width", "320", "--backend", "software"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !conf.Player.Offscreen || conf.Engine.Width != 320 {
		t.Errorf("flags are not applied: %+v", conf.Engine)
	}

	nc, err := nativeConfig(conf)
	if err != nil {
		t.Fatalf("native config: %v", err)
	}
	if nc.Backend != native.BackendSoftware || nc.Width != 320 {
		t.Errorf("unexpected native config %+v", nc)
	}
	if nc.ClearColor != [4]float64{0, 0, 0, 1} {
		t.Errorf("unexpected clear color %v", nc.ClearColor)
	}
}

func TestLoadConfigBadBackend(t *testing.T) {
	if _, err := loadConfig([]string{"-c", "../../configs", "--backend", "metal"}); err == nil {
		t.Errorf("expected an error")
	}
}
