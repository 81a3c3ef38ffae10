// Package metrics exposes Prometheus counters for validation runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File outcomes used as the "result" label.
const (
	ResultPassed  = "passed"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
	ResultError   = "error"
)

var (
	FilesValidated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glslcheck_files_validated_total",
		Help: "Shader files processed, by outcome",
	}, []string{"result"})
	Diagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glslcheck_diagnostics_total",
		Help: "Highlighted diagnostics reported, by severity",
	}, []string{"severity"})
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glslcheck_cache_lookups_total",
		Help: "Result cache lookups, by hit or miss",
	}, []string{"result"})
	ScratchFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glslcheck_scratch_files_total",
		Help: "Augmented scratch files written",
	})
	ValidatorDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "glslcheck_validator_duration_seconds",
		Help:    "Wall time of a single glslangValidator run",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})
)

func init() {
	for _, r := range []string{ResultPassed, ResultFailed, ResultSkipped, ResultError} {
		FilesValidated.WithLabelValues(r).Add(0)
	}
	CacheLookups.WithLabelValues("hit").Add(0)
	CacheLookups.WithLabelValues("miss").Add(0)
}

// ObserveValidator records one validator run.
func ObserveValidator(d time.Duration) {
	ValidatorDuration.Observe(d.Seconds())
}

// ObserveCache records a cache lookup.
func ObserveCache(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// Handler should usually be mounted at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
