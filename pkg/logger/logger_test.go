package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestJson(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Tag: "player", Json: true, Out: &buf})
	log.Module("engine").Info().Str("id", "42").Msg("hello")
	log.Debug().Msg("hidden")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not a JSON line %q: %v", buf.String(), err)
	}
	for k, v := range map[string]string{"s": "player", "m": "engine", "id": "42", "message": "hello", "level": "info"} {
		if line[k] != v {
			t.Errorf("expected %v=%v, got %v", k, v, line[k])
		}
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Debug: true, Tag: "player", NoColor: true, Out: &buf})
	log.Module("remote").Debug().Msg("connected")

	out := buf.String()
	for _, s := range []string{"player", "remote", "connected", "DBG"} {
		if !strings.Contains(out, s) {
			t.Errorf("no %q in %q", s, out)
		}
	}
	// tags are printed as parts, not as fields
	for _, s := range []string{"s=", "m=", "pid="} {
		if strings.Contains(out, s) {
			t.Errorf("field %q is not excluded in %q", s, out)
		}
	}
}

func TestNop(t *testing.T) {
	Nop().Module("x").Error().Msg("nothing")
}
