package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pipelineRuns counts pipeline invocations by entry point
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coderabbit_pipeline_runs_total",
		Help: "Total pipeline invocations by entry point",
	}, []string{"entrypoint"})

	// stageDuration tracks the latency of each pipeline stage
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coderabbit_stage_duration_seconds",
		Help:    "Pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 9), // 0.1ms to ~6.5s
	}, []string{"stage"})

	// cacheLookups counts result cache lookups by outcome
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coderabbit_cache_lookups_total",
		Help: "Result cache lookups by result (hit, miss, collision)",
	}, []string{"result"})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coderabbit_cache_evictions_total",
		Help: "Result cache entries evicted to honor the capacity",
	})

	// findingsTotal counts analyzer findings by severity
	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coderabbit_findings_total",
		Help: "Analyzer findings by severity",
	}, []string{"severity"})
)

// Cache lookup outcomes.
const (
	LookupHit       = "hit"
	LookupMiss      = "miss"
	LookupCollision = "collision"
)

func ObservePipelineRun(entrypoint string) {
	pipelineRuns.WithLabelValues(entrypoint).Inc()
}

// ObserveStage records the time elapsed since start for a stage.
func ObserveStage(stage string, start time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func ObserveCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func ObserveCacheEviction() {
	cacheEvictions.Inc()
}

func ObserveFinding(severity string) {
	findingsTotal.WithLabelValues(severity).Inc()
}
