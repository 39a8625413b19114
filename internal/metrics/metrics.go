// Package metrics collects Prometheus metrics for HTTP requests, calls to the
// identity provider and document store, and rate-limited requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "account_api"

// GatewayRecorder records the outcome of a downstream call.
type GatewayRecorder interface {
	RecordGatewayCall(operation, outcome string, duration time.Duration)
}

// HTTPRecorder records served HTTP requests.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordRateLimited(route string)
}

// Collector is the Prometheus implementation of GatewayRecorder and HTTPRecorder.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
}

var (
	_ GatewayRecorder = (*Collector)(nil)
	_ HTTPRecorder    = (*Collector)(nil)
)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Identity provider and profile store calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Identity provider and profile store call latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-client rate limiter, by route.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.gatewayCalls,
		c.gatewayDuration,
		c.rateLimited,
	)

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRateLimited records a request rejected by the rate limiter.
func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

// RecordGatewayCall records one downstream call.
func (c *Collector) RecordGatewayCall(operation, outcome string, duration time.Duration) {
	c.gatewayCalls.WithLabelValues(operation, outcome).Inc()
	c.gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

// RecordHTTPRequest implements HTTPRecorder.
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

// RecordRateLimited implements HTTPRecorder.
func (Nop) RecordRateLimited(string) {}

// RecordGatewayCall implements GatewayRecorder.
func (Nop) RecordGatewayCall(string, string, time.Duration) {}
