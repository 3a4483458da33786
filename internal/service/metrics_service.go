package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcome labels recorded per attempt.
const (
	BookingOutcomeBooked        = "booked"
	BookingOutcomeCancelled     = "cancelled"
	BookingOutcomeAlreadyBooked = "already_booked"
	BookingOutcomeNotBookable   = "not_bookable"
	BookingOutcomeNotFound      = "not_found"
	BookingOutcomeInvalid       = "invalid"
	BookingOutcomeContended     = "contended"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	bookingTotal   *prometheus.CounterVec
	bookingRetries prometheus.Counter
	materialized   prometheus.Counter
	erased         prometheus.Counter
	claimSyncTotal *prometheus.CounterVec

	cacheLatency prometheus.Observer
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
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

	bookingTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_attempts_total",
		Help: "Booking operations by final outcome",
	}, []string{"op", "outcome"})

	bookingRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_retries_total",
		Help: "Optimistic-concurrency retries during booking operations",
	})

	materialized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slots_materialized_total",
		Help: "Slots created by schedule materialization",
	})

	erased := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slots_erased_total",
		Help: "Slots deleted by schedule withdrawal",
	})

	claimSyncTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "claim_sync_total",
		Help: "Admin-claim synchronizer runs by event and recorded status",
	}, []string{"event", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, bookingTotal, bookingRetries,
		materialized, erased, claimSyncTotal, cacheLatency, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		bookingTotal:    bookingTotal,
		bookingRetries:  bookingRetries,
		materialized:    materialized,
		erased:          erased,
		claimSyncTotal:  claimSyncTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler exposes the scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

// ObserveHTTPRequest records one completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordBooking records the final outcome of a book or cancel call.
func (s *MetricsService) RecordBooking(op, outcome string) {
	if s == nil {
		return
	}
	s.bookingTotal.WithLabelValues(op, outcome).Inc()
}

// RecordBookingRetry counts one optimistic-concurrency retry.
func (s *MetricsService) RecordBookingRetry() {
	if s == nil {
		return
	}
	s.bookingRetries.Inc()
}

// RecordMaterialized counts slots created by the materializer.
func (s *MetricsService) RecordMaterialized(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.materialized.Add(float64(n))
}

// RecordErased counts slots removed by the range eraser.
func (s *MetricsService) RecordErased(n int64) {
	if s == nil || n <= 0 {
		return
	}
	s.erased.Add(float64(n))
}

// RecordClaimSync records one synchronizer run.
func (s *MetricsService) RecordClaimSync(event, status string) {
	if s == nil {
		return
	}
	s.claimSyncTotal.WithLabelValues(event, status).Inc()
}

// RecordCacheOperation records a cache lookup and its latency.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if s == nil {
		return
	}
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}
