// Package metrics exposes Prometheus instrumentation for the referral and
// dispatch pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReferralsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoslink_referrals_created_total",
			Help: "Total number of patient referrals created",
		},
	)

	DispatchAssignmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoslink_dispatch_assignments_total",
			Help: "Total number of successful ambulance assignments",
		},
	)

	DispatchRollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoslink_dispatch_rollbacks_total",
			Help: "Total number of assignments rolled back after a fleet-side failure",
		},
	)

	MissionsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoslink_missions_completed_total",
			Help: "Total number of completed transfer missions",
		},
	)

	ActiveMissions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoslink_active_missions",
			Help: "Number of missions with a running movement simulator",
		},
	)

	SimulatorTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoslink_simulator_ticks_total",
			Help: "Total number of simulated location samples written",
		},
	)

	SimulatorWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hoslink_simulator_write_failures_total",
			Help: "Total number of location writes the simulator retried",
		},
	)

	NotificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoslink_notifications_sent_total",
			Help: "Total number of notifications sent, by kind",
		},
		[]string{"kind"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoslink_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Register registers all Prometheus metrics.
func Register() {
	prometheus.MustRegister(ReferralsCreatedTotal)
	prometheus.MustRegister(DispatchAssignmentsTotal)
	prometheus.MustRegister(DispatchRollbacksTotal)
	prometheus.MustRegister(MissionsCompletedTotal)
	prometheus.MustRegister(ActiveMissions)
	prometheus.MustRegister(SimulatorTicksTotal)
	prometheus.MustRegister(SimulatorWriteFailuresTotal)
	prometheus.MustRegister(NotificationsSentTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
