package monitoring

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/framecast/player/pkg/config"
	"github.com/framecast/player/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

func get(t *testing.T, port int, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s", port, path))
	if err != nil {
		t.Fatalf("get %v: %v", path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_frames_total", Help: "frames"})
	reg.MustRegister(c)
	c.Add(3)

	m, err := New(config.Monitoring{URLPrefix: "/mon", MetricEnabled: true}, reg, logger.Nop())
	if err != nil {
		t.Fatalf("monitoring: %v", err)
	}
	m.Run()
	defer func() { _ = m.Shutdown(context.Background()) }()

	code, body := get(t, m.Port(), "/mon/metrics")
	if code != http.StatusOK {
		t.Fatalf("status %v", code)
	}
	if !strings.Contains(body, "test_frames_total 3") {
		t.Errorf("no counter in %q", body)
	}

	if code, _ = get(t, m.Port(), "/mon/debug/pprof/"); code != http.StatusNotFound {
		t.Errorf("profiling should be off, got %v", code)
	}
}

func TestProfiling(t *testing.T) {
	m, err := New(config.Monitoring{ProfilingEnabled: true}, nil, logger.Nop())
	if err != nil {
		t.Fatalf("monitoring: %v", err)
	}
	m.Run()
	defer func() { _ = m.Shutdown(context.Background()) }()

	if code, _ := get(t, m.Port(), "/debug/pprof/goroutine"); code != http.StatusOK {
		t.Errorf("status %v", code)
	}
	if m.String() != "monitoring:::0" {
		t.Errorf("name %v", m.String())
	}
}
