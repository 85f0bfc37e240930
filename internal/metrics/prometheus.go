package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the prediction pipeline

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_api_calls_total",
			Help: "Total number of provider API calls",
		},
		[]string{"provider", "endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccer_api_call_duration_seconds",
			Help:    "Duration of provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccer_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccer_db_connections_active",
			Help: "Number of active database connections",
		},
		[]string{"database"},
	)

	DBConnectionsIdle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccer_db_connections_idle",
			Help: "Number of idle database connections",
		},
		[]string{"database"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccer_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccer_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccer_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sweep metrics
	SweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_sweeps_total",
			Help: "Total number of sweep runs",
		},
		[]string{"job", "status"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccer_sweep_duration_seconds",
			Help:    "Duration of sweep runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)

	LastSuccessfulSweep = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccer_last_successful_sweep_timestamp",
			Help: "Timestamp of the last successful run per sweep",
		},
		[]string{"job"},
	)

	// Pipeline metrics
	RowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_rows_inserted_total",
			Help: "Total number of rows inserted by ingest",
		},
		[]string{"table"},
	)

	GradesAssigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_grades_assigned_total",
			Help: "Total number of grades written by the grading sweeps",
		},
		[]string{"table", "market", "grade"},
	)

	PredictionsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_predictions_settled_total",
			Help: "Total number of predictions settled",
		},
		[]string{"table", "result"},
	)

	AdviceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_advice_requests_total",
			Help: "Total number of LLM advice requests",
		},
		[]string{"status"},
	)

	TeamsMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_teams_mapped_total",
			Help: "Total number of team mappings written",
		},
		[]string{"league"},
	)

	MatchesMapped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_matches_mapped_total",
			Help: "Total number of match mappings written",
		},
		[]string{"mapped_via"},
	)

	// Daily performance gauges
	DailySettled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "soccer_daily_settled",
			Help: "Predictions settled for the last processed date",
		},
	)

	DailyAccuracy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccer_daily_accuracy_percent",
			Help: "Hit rate per market for the last processed date",
		},
		[]string{"market"},
	)

	DailyProfitLoss = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccer_daily_profit_loss",
			Help: "Profit/loss sum per market for the last processed date",
		},
		[]string{"market"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccer_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Worker metrics
	WorkerLoopIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccer_worker_loop_iterations_total",
			Help: "Total number of worker loop iterations",
		},
	)

	WorkerLoopDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soccer_worker_loop_duration_seconds",
			Help:    "Duration of worker loop iterations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "soccer_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(provider, endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(provider, endpoint, status).Inc()
	APICallDuration.WithLabelValues(provider, endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSweep records a sweep run
func RecordSweep(job, status string, duration float64) {
	SweepsTotal.WithLabelValues(job, status).Inc()
	SweepDuration.WithLabelValues(job).Observe(duration)

	if status == "success" {
		LastSuccessfulSweep.WithLabelValues(job).SetToCurrentTime()
	}
}

// RecordInsert records rows inserted into a table
func RecordInsert(table string, count int) {
	RowsInserted.WithLabelValues(table).Add(float64(count))
}

// RecordGrade records one grade written by a grading sweep
func RecordGrade(table, market, grade string) {
	GradesAssigned.WithLabelValues(table, market, grade).Inc()
}

// RecordSettlement records one settled prediction
func RecordSettlement(table, result string) {
	PredictionsSettled.WithLabelValues(table, result).Inc()
}

// RecordAdvice records one LLM advice request
func RecordAdvice(status string) {
	AdviceRequests.WithLabelValues(status).Inc()
}

// RecordTeamMapping records one team mapping written
func RecordTeamMapping(league string) {
	TeamsMapped.WithLabelValues(league).Inc()
}

// RecordMatchMapping records one match mapping written
func RecordMatchMapping(via string) {
	MatchesMapped.WithLabelValues(via).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(database string, active, idle int32) {
	DBConnectionsActive.WithLabelValues(database).Set(float64(active))
	DBConnectionsIdle.WithLabelValues(database).Set(float64(idle))
}

// UpdateDailyStats updates the daily performance gauges
func UpdateDailyStats(settled int, ouAccuracy, winnerAccuracy, ouProfit, winnerProfit float64) {
	DailySettled.Set(float64(settled))
	DailyAccuracy.WithLabelValues("over_under").Set(ouAccuracy)
	DailyAccuracy.WithLabelValues("moneyline").Set(winnerAccuracy)
	DailyProfitLoss.WithLabelValues("over_under").Set(ouProfit)
	DailyProfitLoss.WithLabelValues("moneyline").Set(winnerProfit)
}

// RecordWorkerIteration records a worker loop iteration
func RecordWorkerIteration(duration float64) {
	WorkerLoopIterations.Inc()
	WorkerLoopDuration.Observe(duration)
}
