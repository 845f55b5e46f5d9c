package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	Reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "reservations_total", Help: "Reservation protocol outcomes."},
		[]string{"op", "outcome"}, // op: reserve|update|cancel
	)
	ReservationRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "booking", Name: "reservation_retries_total", Help: "Transactions retried after a transient conflict."},
		[]string{"op"},
	)
	ReservationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking", Name: "reservation_duration_seconds",
			Help:    "Reservation protocol duration seconds, retries included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, CacheEvents, Reservations, ReservationRetries, ReservationLatency)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveReservation(op, outcome string, dur time.Duration) {
	Reservations.WithLabelValues(op, outcome).Inc()
	ReservationLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func ObserveRetry(op string) { ReservationRetries.WithLabelValues(op).Inc() }

// Server builds a standalone metrics listener; nil when addr is empty (disabled).
func Server(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
