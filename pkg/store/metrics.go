package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstream_snapshot_loads_total",
		Help: "Snapshot loads from the blob store.",
	})
	loadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstream_snapshot_load_failures_total",
		Help: "Snapshot loads that failed.",
	})
	saves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstream_snapshot_saves_total",
		Help: "Snapshot saves to the blob store.",
	})
	saveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstream_snapshot_save_failures_total",
		Help: "Snapshot saves that failed.",
	})
	checkpoints = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workstream_snapshot_checkpoints_total",
		Help: "Checkpoint copies written by the maintenance job.",
	})
	snapshotBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "workstream_snapshot_bytes",
		Help: "Size of the last persisted snapshot blob.",
	})
)
