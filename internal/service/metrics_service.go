package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	eventsCreated   prometheus.Counter
	eventConflicts  prometheus.Counter
	fanoutDelivered prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	eventsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_events_created_total",
		Help: "Events persisted by schedule expansion",
	})

	eventConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_event_conflicts_total",
		Help: "Candidates rejected by the conflict check",
	})

	fanoutDelivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_fanout_recipients_total",
		Help: "Notification recipients reached by fan-out jobs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, eventsCreated, eventConflicts, fanoutDelivered, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		eventsCreated:   eventsCreated,
		eventConflicts:  eventConflicts,
		fanoutDelivered: fanoutDelivered,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScheduleExpansion records the outcome of one expansion run.
func (m *MetricsService) ObserveScheduleExpansion(created, conflicts int) {
	if m == nil {
		return
	}
	m.eventsCreated.Add(float64(created))
	m.eventConflicts.Add(float64(conflicts))
}

// ObserveFanout records delivered notification recipients.
func (m *MetricsService) ObserveFanout(recipients int) {
	if m == nil {
		return
	}
	m.fanoutDelivered.Add(float64(recipients))
}
