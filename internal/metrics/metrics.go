package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Directory operations
	DirectoryOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_operations_total",
			Help: "Directory service calls by operation and outcome",
		},
		[]string{"op", "outcome"}, // outcome: ok|validation|conflict|not_found|invalid_credentials|forbidden|error
	)
	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_users",
			Help: "Live user records",
		},
	)

	// Password hashing pool
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves /metrics.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(DirectoryOpsTotal)
	prometheus.MustRegister(UsersTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
