package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce               sync.Once
	apiRequestsTotal           *prometheus.CounterVec
	apiLatencySeconds          *prometheus.HistogramVec
	apiErrorsTotal             *prometheus.CounterVec
	applicationsSubmittedTotal prometheus.Counter
	applicationDecisionsTotal  *prometheus.CounterVec
	uploadRejectedTotal        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admissions_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		applicationsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "admissions_applications_submitted_total",
			Help: "Total number of applications successfully submitted.",
		})

		applicationDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_application_decisions_total",
			Help: "Total number of final decisions recorded, by outcome.",
		}, []string{"decision"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_upload_rejected_total",
			Help: "Total number of uploads rejected during validation.",
		}, []string{"reason"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			applicationsSubmittedTotal,
			applicationDecisionsTotal,
			uploadRejectedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ApplicationsSubmitted exposes the submission counter.
func ApplicationsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return applicationsSubmittedTotal
}

// ApplicationDecisions exposes the decision counter.
func ApplicationDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return applicationDecisionsTotal
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}
