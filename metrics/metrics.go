// Package metrics exposes Prometheus instrumentation for the storage core.
// Every component that does nontrivial work touches one of these
// collectors; none of them gate behavior, so a caller that never scrapes
// /metrics pays only the promauto registration cost.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var EventsWritten = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "nostrdb_events_written_total",
		Help: "Events successfully appended to the events log.",
	},
)

var EventsDeleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "nostrdb_events_deleted_total",
		Help: "Events marked deleted via delete_event.",
	},
)

var WriteErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nostrdb_write_errors_total",
		Help: "write_event failures by reason.",
	},
	[]string{"reason"},
)

var QueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "nostrdb_query_duration_seconds",
		Help:    "query() wall time by chosen strategy.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	},
	[]string{"strategy"},
)

var IndexEntries = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "nostrdb_index_entries",
		Help: "entry_count per index, tombstoned entries included.",
	},
	[]string{"index"},
)

var PagedFileBytes = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "nostrdb_paged_file_bytes",
		Help: "Current mapped file size per file.",
	},
	[]string{"file"},
)
