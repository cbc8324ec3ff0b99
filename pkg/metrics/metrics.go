package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_records_processed_total",
		Help: "Total number of listing records processed, by outcome",
	}, []string{"outcome"})

	WindowsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_windows_fetched_total",
		Help: "Total number of date windows requested from the broker",
	}, []string{"status"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "broker_fetch_duration_seconds",
		Help:    "Duration of broker API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	})

	RowsExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "export_rows_total",
		Help: "Total number of CSV rows exported",
	})

	TransactionsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transactions_loaded_total",
		Help: "Total number of transactions loaded into the database",
	}, []string{"status"})

	DatabaseQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "database_queries_total",
		Help: "Total number of database queries",
	}, []string{"query_type", "status"})

	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "database_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query_type"})
)

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

func RecordDatabaseQuery(queryType, status string, duration float64) {
	DatabaseQueries.WithLabelValues(queryType, status).Inc()
	DatabaseQueryDuration.WithLabelValues(queryType).Observe(duration)
}

func RecordRecord(outcome string) {
	RecordsProcessed.WithLabelValues(outcome).Inc()
}

func RecordWindow(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	WindowsFetched.WithLabelValues(status).Inc()
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
