// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MigrationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migration_runs_total",
			Help: "Total number of migration runs by outcome",
		},
		[]string{"mode", "outcome"},
	)

	MigrationItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "migration_items_total",
			Help: "Total number of per-template migration outcomes",
		},
		[]string{"status"},
	)

	MigrationRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "migration_run_duration_seconds",
			Help: "Duration of a full migration run in seconds",
		},
		[]string{"mode"},
	)

	HubSpotEndpointAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubspot_endpoint_attempts_total",
			Help: "Template fetch attempts per HubSpot endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
)
