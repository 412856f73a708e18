package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IdentitiesCreated counts reporter identities created (including replacements)
	IdentitiesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadguard_identities_created_total",
			Help: "Total number of reporter identities created",
		},
	)

	// IdentitiesCleared counts explicit identity clear operations
	IdentitiesCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadguard_identities_cleared_total",
			Help: "Total number of reporter identities cleared",
		},
	)

	// IdentityStorageErrors counts failed identity slot operations
	IdentityStorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadguard_identity_storage_errors_total",
			Help: "Total number of failed identity slot operations",
		},
		[]string{"operation"},
	)

	// ReportsSubmitted counts hazard reports accepted, by hazard type
	ReportsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadguard_reports_submitted_total",
			Help: "Total number of hazard reports submitted",
		},
		[]string{"hazard"},
	)

	// ReportsAnchored counts anchor attempts by outcome
	ReportsAnchored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadguard_reports_anchored_total",
			Help: "Total number of report anchor attempts",
		},
		[]string{"status"},
	)

	// AnchorDuration tracks on-chain anchoring time
	AnchorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roadguard_anchor_duration_seconds",
			Help:    "Report anchoring duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PendingReports tracks the current pending anchor backlog
	PendingReports = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roadguard_pending_reports",
			Help: "Number of reports waiting to be anchored",
		},
	)
)
