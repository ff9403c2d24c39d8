// Package metrics counts data set retrievals and cache writes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeWeb           = "web"
	OutcomeCacheFallback = "cache_fallback"
	OutcomeFailed        = "failed"
)

// Cache write results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder owns a private Prometheus registry. A nil Recorder records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	fetches     *prometheus.CounterVec
	cacheWrites *prometheus.CounterVec
}

// New builds a Recorder with process and Go runtime collectors attached.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tengen",
			Name:      "fetch_total",
			Help:      "Data set retrievals by resource and outcome.",
		}, []string{"resource", "outcome"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tengen",
			Name:      "cache_writes_total",
			Help:      "Cache writes by resource and result.",
		}, []string{"resource", "result"}),
	}
	reg.MustRegister(
		r.fetches,
		r.cacheWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Fetch counts one retrieval.
func (r *Recorder) Fetch(resource, outcome string) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(resource, outcome).Inc()
}

// CacheWrite counts one cache write, failed when err is non-nil.
func (r *Recorder) CacheWrite(resource string, err error) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.cacheWrites.WithLabelValues(resource, result).Inc()
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
