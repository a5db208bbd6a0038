// Package metrics provides Prometheus metrics for docask.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docask"

// Metrics holds all Prometheus metrics for docask.
// Each instance owns its registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion metrics
	FilesProcessed *prometheus.CounterVec
	ChunksWritten  prometheus.Counter
	ScanDuration   prometheus.Histogram
	ScansInFlight  prometheus.Gauge

	// Retrieval metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec
	SearchResults  prometheus.Histogram

	// Answer metrics
	AnswersTotal       *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	OracleErrors       *prometheus.CounterVec

	// Store gauges
	StoredFiles  prometheus.Gauge
	StoredChunks prometheus.Gauge

	StartTime time.Time
}

// New creates and registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		StartTime: time.Now(),
	}

	m.FilesProcessed = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_files_total",
			Help:      "Files seen during ingestion, by outcome",
		},
		[]string{"outcome"},
	)

	m.ChunksWritten = f.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_chunks_written_total",
			Help:      "Chunks inserted into the chunk store",
		},
	)

	m.ScanDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_scan_duration_seconds",
			Help:      "Duration of directory scans in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900},
		},
	)

	m.ScansInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingest_scans_in_flight",
			Help:      "Number of directory scans currently running",
		},
	)

	m.SearchesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches executed, by engine",
		},
		[]string{"engine"},
	)

	m.SearchDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of chunk ranking in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"engine"},
	)

	m.SearchResults = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
	)

	m.AnswersTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers produced, by outcome",
		},
		[]string{"outcome"},
	)

	m.GenerationDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation oracle calls in seconds",
			Buckets:   []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	m.OracleErrors = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_errors_total",
			Help:      "Failed oracle calls, by oracle",
		},
		[]string{"oracle"},
	)

	m.StoredFiles = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_files",
			Help:      "Tracked files in the chunk store",
		},
	)

	m.StoredChunks = f.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_chunks",
			Help:      "Chunks in the chunk store",
		},
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordFile counts one ingested file.
func (m *Metrics) RecordFile(outcome string, chunks int) {
	if m == nil {
		return
	}
	m.FilesProcessed.WithLabelValues(outcome).Inc()
	if chunks > 0 {
		m.ChunksWritten.Add(float64(chunks))
	}
}

// RecordSearch records a ranking call.
func (m *Metrics) RecordSearch(engine string, d time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(engine).Inc()
	m.SearchDuration.WithLabelValues(engine).Observe(d.Seconds())
	m.SearchResults.Observe(float64(results))
}

// RecordAnswer records the outcome of a question.
func (m *Metrics) RecordAnswer(outcome string) {
	if m == nil {
		return
	}
	m.AnswersTotal.WithLabelValues(outcome).Inc()
}

// RecordGeneration records the duration of an oracle call.
func (m *Metrics) RecordGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDuration.Observe(d.Seconds())
}

// RecordOracleError counts a failed oracle call.
func (m *Metrics) RecordOracleError(oracle string) {
	if m == nil {
		return
	}
	m.OracleErrors.WithLabelValues(oracle).Inc()
}

// ScanStarted marks a scan as running and returns a func that records its end.
func (m *Metrics) ScanStarted() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.ScansInFlight.Inc()
	return func() {
		m.ScansInFlight.Dec()
		m.ScanDuration.Observe(time.Since(start).Seconds())
	}
}

// SetStoreSize updates the store gauges.
func (m *Metrics) SetStoreSize(files, chunks int) {
	if m == nil {
		return
	}
	m.StoredFiles.Set(float64(files))
	m.StoredChunks.Set(float64(chunks))
}
