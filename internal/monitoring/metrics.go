package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the storage health subsystem.
var (
	// NASProbesTotal counts probe runs by resulting status.
	NASProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tierfs_nas_probes_total",
		Help: "NAS health probe runs by status",
	}, []string{"status"})

	// NASProbeDuration observes end-to-end probe time.
	NASProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tierfs_nas_probe_duration_seconds",
		Help:    "NAS health probe duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// NASFreeBytes reports the last observed free capacity of the NAS tier.
	NASFreeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tierfs_nas_free_bytes",
		Help: "Free bytes on the NAS tier from the last successful probe",
	})

	// ConsistencyRunsTotal counts reconciliation passes.
	ConsistencyRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tierfs_consistency_runs_total",
		Help: "Consistency reconciliation passes",
	})

	// ConsistencyIssuesTotal counts detected drift by issue type.
	ConsistencyIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tierfs_consistency_issues_total",
		Help: "Consistency issues detected, by type",
	}, []string{"type"})

	// ConsistencyObjectsChecked counts storage objects examined.
	ConsistencyObjectsChecked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tierfs_consistency_objects_checked_total",
		Help: "Storage objects examined by the reconciler",
	})
)
