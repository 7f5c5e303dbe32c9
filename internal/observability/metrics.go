package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	genRequests *prometheus.CounterVec
	genLatency  *prometheus.HistogramVec

	sweeperRuns *prometheus.CounterVec
	sweptRows   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "taskyn_http_requests_total", Help: "HTTP requests by method, route and status."},
			[]string{"method", "route", "status"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "taskyn_http_request_duration_seconds", Help: "HTTP request latency.", Buckets: prometheus.DefBuckets},
			[]string{"method", "route", "status"},
		),
		apiInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "taskyn_http_inflight_requests", Help: "HTTP requests currently being served."},
		),
		genRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "taskyn_generation_requests_total", Help: "Generation calls by prompt, provider and outcome."},
			[]string{"prompt", "provider", "outcome"},
		),
		genLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "taskyn_generation_duration_seconds", Help: "Generation call latency.", Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80}},
			[]string{"prompt", "provider"},
		),
		sweeperRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "taskyn_sweeper_runs_total", Help: "Maintenance job runs by job and status."},
			[]string{"job", "status"},
		),
		sweptRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "taskyn_sweeper_rows_total", Help: "Rows affected by maintenance jobs."},
			[]string{"job"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.genRequests, m.genLatency,
		m.sweeperRuns, m.sweptRows,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveGeneration satisfies generation.Recorder.
func (m *Metrics) ObserveGeneration(prompt, provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.genRequests.WithLabelValues(prompt, provider, outcome).Inc()
	m.genLatency.WithLabelValues(prompt, provider).Observe(dur.Seconds())
}

func (m *Metrics) ObserveSweep(job string, rows int64, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sweeperRuns.WithLabelValues(job, status).Inc()
	if rows > 0 {
		m.sweptRows.WithLabelValues(job).Add(float64(rows))
	}
}
