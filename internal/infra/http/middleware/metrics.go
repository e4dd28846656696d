package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_messages_sent_total",
			Help: "Total number of outreach messages dispatched",
		},
		[]string{"channel", "kind"},
	)

	dispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_dispatch_failures_total",
			Help: "Total number of failed dispatch attempts",
		},
		[]string{"channel"},
	)

	rateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_rate_limit_denials_total",
			Help: "Total number of sends denied by the rate limiter",
		},
		[]string{"channel"},
	)

	responsesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_responses_classified_total",
			Help: "Total number of inbound replies classified",
		},
		[]string{"kind"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordMessageSent(channel, kind string) {
	messagesSent.WithLabelValues(channel, kind).Inc()
}

func RecordDispatchFailure(channel string) {
	dispatchFailures.WithLabelValues(channel).Inc()
}

func RecordRateLimitDenial(channel string) {
	rateLimitDenials.WithLabelValues(channel).Inc()
}

func RecordResponseClassified(kind string) {
	responsesClassified.WithLabelValues(kind).Inc()
}
