// Package observability provides Prometheus metrics for the alchemy client
// and HTTP middleware for servers built around it.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CallBuckets covers remote analysis latencies from 50ms to 60s.
var CallBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

var (
	// CallsTotal counts client calls by capability, flavor and outcome.
	// Outcome is "ok", "service_error" or an error kind.
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alchemy_client_calls_total",
			Help: "Client calls",
		},
		[]string{"capability", "flavor", "outcome"},
	)

	// CallDuration records client call duration in seconds.
	CallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alchemy_client_call_duration_seconds",
			Help:    "Client call duration",
			Buckets: CallBuckets,
		},
		[]string{"capability"},
	)

	// UploadBytesTotal counts bytes sent as raw image uploads.
	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alchemy_client_upload_bytes_total",
			Help: "Uploaded image bytes",
		},
	)

	// RequestsTotal counts HTTP requests served, by method, status class and path.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alchemy_http_requests_total",
			Help: "Served HTTP requests",
		},
		[]string{"method", "status", "path"},
	)

	// RequestDuration records served HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alchemy_http_request_duration_seconds",
			Help:    "Served HTTP request duration",
			Buckets: CallBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		CallsTotal,
		CallDuration,
		UploadBytesTotal,
		RequestsTotal,
		RequestDuration,
	)
}

// RecordCall observes one finished client call.
func RecordCall(capability, flavor, outcome string, d time.Duration) {
	CallsTotal.WithLabelValues(capability, flavor, outcome).Inc()
	CallDuration.WithLabelValues(capability).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
