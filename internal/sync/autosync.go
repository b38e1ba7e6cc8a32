package sync

import (
	"context"
	"time"

	"github.com/xelth-com/ecktms/internal/metrics"
	"github.com/xelth-com/ecktms/internal/models"
	"github.com/xelth-com/ecktms/internal/notify"
	"github.com/xelth-com/ecktms/internal/session"
	"go.uber.org/zap"
)

// CollectionReport summarises one collection of an auto-sync run
type CollectionReport struct {
	Collection string  `json:"collection"`
	Attempted  int     `json:"attempted"`
	Pushed     int     `json:"pushed"`
	Failed     int     `json:"failed"`
	Errors     []error `json:"-"`
}

// RunReport summarises an auto-sync run
type RunReport struct {
	Skipped     bool               `json:"skipped"`
	Collections []CollectionReport `json:"collections"`
	Duration    time.Duration      `json:"duration"`
}

// Pushed returns the total number of records that reached the server
func (r RunReport) Pushed() int {
	n := 0
	for _, c := range r.Collections {
		n += c.Pushed
	}
	return n
}

// Failed returns the total number of records still queued after the run
func (r RunReport) Failed() int {
	n := 0
	for _, c := range r.Collections {
		n += c.Failed
	}
	return n
}

// AutoSyncRunner pushes records queued during an earlier outage.
// It runs at most once per session.
type AutoSyncRunner struct {
	remote      RemoteStore
	cache       LocalCache
	notifier    ChangeNotifier
	collections []string
	log         *zap.SugaredLogger
}

// NewAutoSyncRunner creates a runner over the given collections
func NewAutoSyncRunner(remote RemoteStore, cache LocalCache, notifier ChangeNotifier, collections []string, log *zap.SugaredLogger) *AutoSyncRunner {
	return &AutoSyncRunner{
		remote:      remote,
		cache:       cache,
		notifier:    notifier,
		collections: collections,
		log:         log,
	}
}

// Collections returns the configured collections followed by any other
// collection the cache holds a snapshot for, so queued records are never
// stranded by a config change.
func (r *AutoSyncRunner) Collections(ctx context.Context) []string {
	out := append([]string(nil), r.collections...)
	seen := make(map[string]bool, len(out))
	for _, c := range out {
		seen[c] = true
	}
	for _, c := range r.cache.Collections(ctx) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Run pushes every unsynced record once. The session flag is claimed before
// the first request, so a second caller in the same session is a no-op even
// while the first run is still in flight. A failed record stays queued and
// never stops the rest of the run.
func (r *AutoSyncRunner) Run(ctx context.Context, state *session.State) RunReport {
	if !state.TryBeginAutoSync() {
		r.log.Debug("⏭️ Auto-sync already ran in this session")
		return RunReport{Skipped: true}
	}

	start := time.Now()
	collections := r.Collections(ctx)
	r.log.Infof("🔄 Auto-sync starting for %d collections", len(collections))

	report := RunReport{}
	for _, collection := range collections {
		report.Collections = append(report.Collections, r.syncCollection(ctx, collection))
	}
	report.Duration = time.Since(start)

	// One refresh for the whole run
	r.notifier.Emit(notify.EventDataSynced)

	r.log.Infof("✅ Auto-sync completed in %v: %d pushed, %d still queued", report.Duration, report.Pushed(), report.Failed())
	return report
}

func (r *AutoSyncRunner) syncCollection(ctx context.Context, collection string) CollectionReport {
	report := CollectionReport{Collection: collection}

	snapshot := r.cache.Read(ctx, collection)
	changed := false

	for i, entity := range snapshot {
		if entity.Synced() {
			continue
		}
		report.Attempted++

		saved, err := r.push(ctx, collection, entity)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err)
			r.log.Warnf("⚠️ Auto-sync: %s record %s still queued: %v", collection, describe(entity), err)
			metrics.IncAutoSyncEntity(collection, metrics.ResultFailed)
			continue
		}

		snapshot[i] = saved
		changed = true
		report.Pushed++
		metrics.IncAutoSyncEntity(collection, metrics.ResultPushed)
	}

	if changed {
		if err := r.cache.Write(ctx, collection, snapshot); err != nil {
			r.log.Errorf("🔴 Auto-sync: failed to persist %s snapshot: %v", collection, err)
		}
	}

	if report.Attempted > 0 {
		r.log.Infof("📤 Auto-sync: %s %d/%d pushed", collection, report.Pushed, report.Attempted)
	}
	return report
}

func (r *AutoSyncRunner) push(ctx context.Context, collection string, entity models.Entity) (models.Entity, error) {
	if id, ok := entity.ID(); ok {
		return r.remote.Update(ctx, collection, id, entity)
	}
	return r.remote.Create(ctx, collection, entity)
}

func describe(e models.Entity) string {
	if key := e.Key(); key != "" {
		return key
	}
	return "<unidentified>"
}
