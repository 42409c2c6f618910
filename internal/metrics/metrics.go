// Package metrics exposes Prometheus collectors on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	FetchDuration   *prometheus.HistogramVec // labels: provider
	FetchErrors     *prometheus.CounterVec   // labels: provider
	CacheLookups    *prometheus.CounterVec   // labels: result=hit|miss
	ComputeDuration prometheus.Histogram
	IndicatorIssues *prometheus.CounterVec // labels: indicator
	Notifications   *prometheus.CounterVec // labels: status=sent|failed
	HTTPRequests    *prometheus.CounterVec // labels: method, route, code
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stocklens_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_fetch_errors_total",
			Help: "Failed market data fetches",
		}, []string{"provider"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_cache_lookups_total",
			Help: "Series cache lookups by result",
		}, []string{"result"}),
		ComputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocklens_indicator_compute_seconds",
			Help:    "Indicator frame computation time",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		IndicatorIssues: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_indicator_issues_total",
			Help: "Indicators that produced no defined values",
		}, []string{"indicator"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_notifications_total",
			Help: "Telegram messages by delivery status",
		}, []string{"status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_http_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "route", "code"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(provider string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(provider).Inc()
	}
}

// CacheHit and CacheMiss count series cache lookups.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCompute records indicator computation time.
func (m *Metrics) ObserveCompute(start time.Time) {
	if m != nil {
		m.ComputeDuration.Observe(time.Since(start).Seconds())
	}
}

// IndicatorIssue counts an indicator reported in frame.Issues.
func (m *Metrics) IndicatorIssue(indicator string) {
	if m != nil {
		m.IndicatorIssues.WithLabelValues(indicator).Inc()
	}
}

// Notification counts a Telegram delivery outcome.
func (m *Metrics) Notification(err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.Notifications.WithLabelValues(status).Inc()
}

// ObserveHTTP counts a served request by its route template.
func (m *Metrics) ObserveHTTP(method, route string, code int) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	}
}
