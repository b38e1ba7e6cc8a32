package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "ecktms"
	subsystem = "sync"
)

// Result labels
const (
	ResultSynced   = "synced"
	ResultDegraded = "degraded"
	ResultSaved    = "saved"
	ResultQueued   = "queued"
	ResultPushed   = "pushed"
	ResultFailed   = "failed"
	ResultDeleted  = "deleted"
)

var (
	loadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "loads_total",
			Help:      "Collection loads by outcome (synced from server or degraded to cache)",
		},
		[]string{"collection", "result"},
	)

	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "saves_total",
			Help:      "Entity saves by outcome (saved remotely or queued locally)",
		},
		[]string{"collection", "result"},
	)

	deletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "deletes_total",
			Help:      "Entity deletes by outcome",
		},
		[]string{"collection", "result"},
	)

	autoSyncEntitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "autosync_entities_total",
			Help:      "Queued entities attempted by the auto-sync runner, by outcome",
		},
		[]string{"collection", "result"},
	)

	cacheQuotaErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "quota_errors_total",
			Help:      "Local cache writes dropped because the storage quota was exhausted",
		},
		[]string{"collection"},
	)
)

// IncLoad records the outcome of a load
func IncLoad(collection, result string) {
	loadsTotal.WithLabelValues(collection, result).Inc()
}

// IncSave records the outcome of a save
func IncSave(collection, result string) {
	savesTotal.WithLabelValues(collection, result).Inc()
}

// IncDelete records the outcome of a delete
func IncDelete(collection, result string) {
	deletesTotal.WithLabelValues(collection, result).Inc()
}

// IncAutoSyncEntity records one auto-sync attempt
func IncAutoSyncEntity(collection, result string) {
	autoSyncEntitiesTotal.WithLabelValues(collection, result).Inc()
}

// IncCacheQuotaError records a dropped cache write
func IncCacheQuotaError(collection string) {
	cacheQuotaErrorsTotal.WithLabelValues(collection).Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
