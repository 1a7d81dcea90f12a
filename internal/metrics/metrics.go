package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistoria_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vistoria_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	surveyTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistoria_survey_transitions_total",
		Help: "Count of survey status transitions by target status",
	}, []string{"status"})

	issuesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vistoria_issues_recorded_total",
		Help: "Count of issues recorded by severity",
	}, []string{"severity"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSurveyTransition counts a survey entering the given status.
func ObserveSurveyTransition(status string) {
	surveyTransitions.WithLabelValues(status).Inc()
}

// ObserveIssueRecorded counts a new issue by severity.
func ObserveIssueRecorded(severity string) {
	issuesRecorded.WithLabelValues(severity).Inc()
}
