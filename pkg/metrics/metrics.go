package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Toplam HTTP istek sayısı",
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP istek süresi (saniye)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_database_operations_total",
			Help: "Toplam veritabanı operasyonu sayısı",
		},
		[]string{"operation", "table"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_database_operation_duration_seconds",
			Help:    "Veritabanı operasyon süresi (saniye)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	SessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_db_sessions_open",
			Help: "Açık veritabanı oturumu sayısı",
		},
	)

	SessionAcquireFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_db_session_acquire_failures_total",
			Help: "Alınamayan veritabanı oturumu sayısı",
		},
	)

	SessionCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_db_session_commits_total",
			Help: "Oturum commit sayısı",
		},
		[]string{"result"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Önbellek isabet sayısı",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Önbellek isabet etmeme sayısı",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_circuit_breaker_state",
			Help: "Devre kesici durumu (0=kapalı, 1=açık, 2=yarı açık)",
		},
		[]string{"name"},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_rate_limited_requests_total",
			Help: "Hız sınırına takılan istek sayısı",
		},
	)
)

func RecordHttpRequest(method, route, status string, duration time.Duration) {
	HttpRequestsTotal.WithLabelValues(method, route, status).Inc()
	HttpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordDatabaseOperation(operation, table string, duration time.Duration) {
	DatabaseOperationsTotal.WithLabelValues(operation, table).Inc()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func SessionOpened() {
	SessionsOpen.Inc()
}

func SessionReleased() {
	SessionsOpen.Dec()
}

func RecordSessionAcquireFailure() {
	SessionAcquireFailures.Inc()
}

func RecordCommit(ok bool) {
	if ok {
		SessionCommits.WithLabelValues("ok").Inc()
		return
	}
	SessionCommits.WithLabelValues("error").Inc()
}

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

func RecordRateLimited() {
	RateLimitedRequests.Inc()
}

func SetCircuitState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
