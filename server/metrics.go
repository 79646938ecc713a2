package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics surfaces scheduler and store health as Prometheus series, giving
// an operator the same perf-counter visibility a host would otherwise have
// to request over the RPC boundary.
var (
	tasksCommittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooworld_tasks_committed_total",
		Help: "Tasks whose transaction committed successfully.",
	})
	tasksConflictRetriedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooworld_tasks_conflict_retried_total",
		Help: "Task attempts aborted and retried due to a write-write conflict at commit.",
	})
	checkpointDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mooworld_checkpoint_duration_seconds",
		Help:    "Wall time spent writing a full checkpoint dump.",
		Buckets: prometheus.DefBuckets,
	})
)

// ServeMetrics starts an HTTP listener exposing /metrics (Prometheus) and
// /ws (the websocket transport) on addr. It runs until the process exits or
// the listener errors; callers typically invoke it in its own goroutine.
func (s *Server) ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.connManager.ServeWS)
	return http.ListenAndServe(addr, mux)
}
