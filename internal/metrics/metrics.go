// Package metrics holds the Prometheus collectors for go-sensesafe.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sensesafe"

// Pipeline label values.
const (
	PipelineDetect     = "detect"
	PipelineTranscribe = "transcribe"
	PipelineTranslate  = "translate"
)

// Result label values for provider calls.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Provider metrics, recorded once per branch or chain link.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_requests_total",
		Help:      "Provider calls by pipeline, provider and result.",
	}, []string{"pipeline", "provider", "result"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Provider call latency in seconds.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"pipeline", "provider"})
)

// Pipeline metrics.
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_total",
		Help:      "Detection scans by summary.",
	}, []string{"summary"})

	TranscriptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transcriptions_total",
		Help:      "Transcriptions by winning provider and degraded flag.",
	}, []string{"provider", "degraded"})

	CapturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "captures_total",
		Help:      "Audio captures by stop reason.",
	}, []string{"reason"})
)

// HTTP metrics (incremented by middleware).
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"method", "route", "status"})

	WSConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections_active",
		Help:      "Currently open websocket connections.",
	})
)

func init() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ScansTotal,
		TranscriptionsTotal,
		CapturesTotal,
		HTTPRequestsTotal,
		WSConnectionsActive,
	)
}

// ObserveProvider records one provider call.
func ObserveProvider(pipeline, provider, result string, d time.Duration) {
	ProviderRequestsTotal.WithLabelValues(pipeline, provider, result).Inc()
	if result != ResultSkipped {
		ProviderRequestDuration.WithLabelValues(pipeline, provider).Observe(d.Seconds())
	}
}

// ObserveTranscription records the outcome of one chain run.
func ObserveTranscription(provider string, degraded bool) {
	if provider == "" {
		provider = "none"
	}
	TranscriptionsTotal.WithLabelValues(provider, strconv.FormatBool(degraded)).Inc()
}

// ObserveHTTP records one handled HTTP request.
func ObserveHTTP(method, route string, status int) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
