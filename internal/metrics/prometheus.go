// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the achievement service.
var (
	// Counters.
	AchievementRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_requests_total",
			Help: "Total number of achievement view requests by outcome",
		},
		[]string{"status"},
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Total number of achievements unlocked",
		},
		[]string{"key", "category"},
	)

	AchievementUnlockConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_unlock_conflicts_total",
			Help: "Unlock inserts that found the record already present",
		},
		[]string{"key"},
	)

	AchievementDefinitionWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_definition_warnings_total",
			Help: "Evaluations that skipped a definition with an unknown metric",
		},
		[]string{"key"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievement_notifications_total",
			Help: "Unlock notifications by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// Histograms.
	AchievementEvaluationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "achievement_evaluation_duration_seconds",
			Help:    "Time taken to evaluate and assemble one user's achievements",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
	)

	// Scheduler metrics.
	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"status"},
	)

	SchedulerUnlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_unlocks_total",
			Help: "Achievements unlocked by the nightly evaluation",
		},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp",
			Help: "Unix timestamp of last scheduler run",
		},
	)

	SchedulerJobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Time taken to execute the nightly evaluation job",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~1024s
		},
	)
)

// RecordAchievementRequest records the outcome of an achievement view request.
func RecordAchievementRequest(status string) {
	AchievementRequestsTotal.WithLabelValues(status).Inc()
}

// RecordAchievementUnlocked records a new unlock.
func RecordAchievementUnlocked(key, category string) {
	AchievementsUnlockedTotal.WithLabelValues(key, category).Inc()
}

// RecordUnlockConflict records an unlock that lost a concurrent insert.
func RecordUnlockConflict(key string) {
	AchievementUnlockConflictsTotal.WithLabelValues(key).Inc()
}

// RecordDefinitionWarning records an evaluation that hit an unevaluable definition.
func RecordDefinitionWarning(key string) {
	AchievementDefinitionWarningsTotal.WithLabelValues(key).Inc()
}

// RecordNotification records a notification delivery attempt.
func RecordNotification(channel, status string) {
	NotificationsTotal.WithLabelValues(channel, status).Inc()
}

// RecordRateLimitRejection records a rejected request.
func RecordRateLimitRejection() {
	RateLimitRejectionsTotal.Inc()
}

// ObserveEvaluationDuration records how long one evaluation took.
func ObserveEvaluationDuration(seconds float64) {
	AchievementEvaluationDurationSeconds.Observe(seconds)
}

// RecordSchedulerJobRun records a scheduler job execution.
func RecordSchedulerJobRun(status string) {
	SchedulerJobsRunTotal.WithLabelValues(status).Inc()
}

// AddSchedulerUnlocks adds unlocks produced by a scheduler run.
func AddSchedulerUnlocks(count int) {
	SchedulerUnlocksTotal.Add(float64(count))
}

// SetSchedulerLastRun sets the scheduler last run timestamp to now.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// ObserveSchedulerJobDuration records the scheduler job duration.
func ObserveSchedulerJobDuration(seconds float64) {
	SchedulerJobDurationSeconds.Observe(seconds)
}
