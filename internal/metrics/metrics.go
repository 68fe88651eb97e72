package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReorderPersisted tracks persist attempts of reorder gestures by outcome
	ReorderPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpay_reorder_persist_total",
			Help: "Total number of reorder persist attempts",
		},
		[]string{"collection", "result"},
	)

	// ReorderRollbacks tracks optimistic updates that were rolled back
	ReorderRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpay_reorder_rollbacks_total",
			Help: "Total number of reorder rollbacks after a failed persist",
		},
		[]string{"collection"},
	)

	// ReorderCoalesced tracks gestures folded into a pending debounced burst
	ReorderCoalesced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpay_reorder_coalesced_total",
			Help: "Total number of reorder gestures coalesced by the debouncer",
		},
		[]string{"collection"},
	)

	// SequenceRepairs tracks non-canonical sequences repaired on read or on demand
	SequenceRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpay_sequence_repairs_total",
			Help: "Total number of non-canonical position sequences repaired",
		},
		[]string{"collection"},
	)

	// ReorderRequests tracks reorder endpoint calls by status code
	ReorderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpay_reorder_requests_total",
			Help: "Total number of reorder endpoint requests",
		},
		[]string{"collection", "code"},
	)

	// HTTPLatency tracks API request latency
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkpay_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// CacheLookups tracks listing cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkpay_cache_lookups_total",
			Help: "Total number of listing cache lookups",
		},
		[]string{"result"},
	)

	// DBBatchSize tracks the number of rows written per batch
	DBBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkpay_db_batch_size",
			Help:    "Rows written per batched statement",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"operation"},
	)

	// DBConnectionPoolUsage tracks open connections as a percentage of the pool limit
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkpay_db_connection_pool_usage_percent",
			Help: "Open database connections as a percentage of the maximum",
		},
	)
)
