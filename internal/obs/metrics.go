package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters for the load pipeline. Registered on a
// per-context registry so tests can assert on them in isolation.
type Metrics struct {
	LoadsStarted    prometheus.Counter
	LoadsDisplayed  prometheus.Counter
	LoadsStale      prometheus.Counter
	LoadsFailed     prometheus.Counter
	ExtractFailures prometheus.Counter
	OpenHandles     prometheus.Gauge
}

// NewMetrics creates and registers the pipeline metrics on reg. A nil
// registry yields metrics that are collected nowhere but still usable.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		LoadsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dicomstack_loads_started_total",
			Help: "Load-and-display operations started.",
		}),
		LoadsDisplayed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dicomstack_loads_displayed_total",
			Help: "Load operations whose result was applied.",
		}),
		LoadsStale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dicomstack_loads_stale_total",
			Help: "Load results discarded because a newer load superseded them.",
		}),
		LoadsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dicomstack_loads_failed_total",
			Help: "Load operations that exhausted their retry budget.",
		}),
		ExtractFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dicomstack_extract_failures_total",
			Help: "Files rejected during metadata extraction.",
		}),
		OpenHandles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dicomstack_open_resource_handles",
			Help: "Temporary resource handles currently registered.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.LoadsStarted, m.LoadsDisplayed, m.LoadsStale,
			m.LoadsFailed, m.ExtractFailures, m.OpenHandles,
		)
	}
	return m
}
