package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		},
		[]string{"endpoint", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status changes by resulting status.",
		},
		[]string{"status"},
	)

	outboxTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_tasks_total",
			Help:      "Processed outbox tasks by type and result.",
		},
		[]string{"type", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, bookingTransitions, outboxTasks)
	})
}

// ObserveHTTP records one finished request. code is the status class ("2xx").
func ObserveHTTP(endpoint, code string, dur time.Duration) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
	httpDuration.WithLabelValues(endpoint).Observe(dur.Seconds())
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncOutboxTask(taskType, result string) {
	outboxTasks.WithLabelValues(taskType, result).Inc()
}
