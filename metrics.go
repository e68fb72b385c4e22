package fluency

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Diagnostic stages used as the "stage" label.
const (
	StageParse   = "parse"
	StageMerge   = "merge"
	StageResolve = "resolve"
)

// Metrics holds Prometheus collectors for formatting and memoization. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	formats     prometheus.Counter
	diagnostics *prometheus.CounterVec
	hits        prometheus.Counter
	misses      prometheus.Counter
	liveHandles *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. A nil
// registerer leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		formats: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fluency",
			Name:      "format_total",
			Help:      "Total number of formatted messages and attributes",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fluency",
			Name:      "diagnostics_total",
			Help:      "Total number of non fatal diagnostics by stage",
		}, []string{"stage"}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fluency",
			Subsystem: "memoizer",
			Name:      "hits_total",
			Help:      "Total number of memoizer hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fluency",
			Subsystem: "memoizer",
			Name:      "misses_total",
			Help:      "Total number of memoizer misses",
		}),
		liveHandles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fluency",
			Subsystem: "ffi",
			Name:      "live_handles",
			Help:      "Current number of live foreign handles by kind",
		}, []string{"kind"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.formats, m.diagnostics, m.hits, m.misses, m.liveHandles} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordFormat() {
	if m == nil {
		return
	}
	m.formats.Inc()
}

func (m *Metrics) recordDiagnostics(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.diagnostics.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) recordHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *Metrics) recordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

// SetLiveHandles sets the gauge of live handles for kind.
func (m *Metrics) SetLiveHandles(kind string, n int) {
	if m == nil {
		return
	}
	m.liveHandles.WithLabelValues(kind).Set(float64(n))
}
