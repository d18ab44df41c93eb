package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics are prometheus collectors of one engine.
// A nil *Metrics is valid and collects nothing.
type Metrics struct {
	commands   *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	frames     prometheus.Counter
	drawErrors prometheus.Counter
	state      prometheus.Gauge
}

// NewMetrics makes engine collectors labelled with the engine name
// and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer, name string) (*Metrics, error) {
	labels := prometheus.Labels{"engine": name}
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "player",
			Subsystem:   "engine",
			Name:        "commands_total",
			Help:        "Commands processed by the engine worker.",
			ConstLabels: labels,
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "player",
			Subsystem:   "engine",
			Name:        "commands_dropped_total",
			Help:        "Commands dropped before or instead of running.",
			ConstLabels: labels,
		}, []string{"kind", "reason"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "player",
			Subsystem:   "engine",
			Name:        "frames_total",
			Help:        "Frames drawn.",
			ConstLabels: labels,
		}),
		drawErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "player",
			Subsystem:   "engine",
			Name:        "draw_errors_total",
			Help:        "Native draw calls that failed.",
			ConstLabels: labels,
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "player",
			Subsystem:   "engine",
			Name:        "state",
			Help:        "Current engine state id.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.commands, m.dropped, m.frames, m.drawErrors, m.state} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) command(k kind) {
	if m != nil {
		m.commands.WithLabelValues(k.String()).Inc()
	}
}

func (m *Metrics) drop(k kind, reason string) {
	if m != nil {
		m.dropped.WithLabelValues(k.String(), reason).Inc()
	}
}

func (m *Metrics) frame(ok bool) {
	if m == nil {
		return
	}
	m.frames.Inc()
	if !ok {
		m.drawErrors.Inc()
	}
}

func (m *Metrics) setState(s State) {
	if m != nil {
		m.state.Set(float64(s))
	}
}
