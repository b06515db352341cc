package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transfer metrics. Labels stay low-cardinality: operation is copy|move,
// status is the terminal state of the call.
var (
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewvault_transfers_total",
		Help: "Completed single-item transfer calls by operation and status.",
	}, []string{"operation", "status"})

	BulkTransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewvault_bulk_transfers_total",
		Help: "Completed bulk transfer calls by operation and status.",
	}, []string{"operation", "status"})

	ItemsTransferred = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewvault_items_transferred_total",
		Help: "List entries copied, moved or skipped across all transfers.",
	}, []string{"result"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewvault_notifications_total",
		Help: "Release notifications created and webhook deliveries by outcome.",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viewvault_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "viewvault_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
