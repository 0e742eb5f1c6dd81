package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "daytracker",
		Subsystem: "persistence",
		Name:      "last_activity_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	dailySummariesCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daytracker",
		Subsystem: "analytics",
		Name:      "daily_summaries_total",
		Help:      "Number of daily summaries computed.",
	})
	trendReportsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daytracker",
		Subsystem: "analytics",
		Name:      "trend_reports_total",
		Help:      "Number of trend reports computed.",
	})
)

func init() {
	prometheus.MustRegister(activityLoggedGauge, dailySummariesCounter, trendReportsCounter)
}

// RecordActivityLogged updates the persistence watermark gauge.
func RecordActivityLogged(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityLoggedGauge.Set(float64(ts.Unix()))
}

// RecordDailySummaryComputed counts one daily summary computation.
func RecordDailySummaryComputed() {
	dailySummariesCounter.Inc()
}

// RecordTrendReportComputed counts one trend report computation.
func RecordTrendReportComputed() {
	trendReportsCounter.Inc()
}
