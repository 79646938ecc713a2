package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// These register against the default Prometheus registry so the server's
// /metrics handler (server/metrics.go) picks them up without the db package
// needing to know anything about HTTP or the server package.
var (
	verbCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooworld_verb_cache_hits_total",
		Help: "FindVerb calls served from the verb resolution cache.",
	})
	verbCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooworld_verb_cache_misses_total",
		Help: "FindVerb calls that walked the inheritance chain.",
	})
	walLSNGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mooworld_wal_lsn",
		Help: "Highest log-sequence number appended to the write-ahead log.",
	})
)
