package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/ecktms/internal/cache"
	"github.com/xelth-com/ecktms/internal/metrics"
	"github.com/xelth-com/ecktms/internal/models"
	"github.com/xelth-com/ecktms/internal/notify"
	"go.uber.org/zap"
)

// Service reconciles the remote store with the local cache.
//
// The remote store is the source of truth whenever it is reachable. Snapshots
// are replaced wholesale; there is no per-collection lock, so when two calls
// on the same collection overlap the last cache write to finish wins.
type Service struct {
	remote   RemoteStore
	cache    LocalCache
	notifier ChangeNotifier
	log      *zap.SugaredLogger
}

// NewService creates a sync service
func NewService(remote RemoteStore, cache LocalCache, notifier ChangeNotifier, log *zap.SugaredLogger) *Service {
	return &Service{
		remote:   remote,
		cache:    cache,
		notifier: notifier,
		log:      log,
	}
}

// Load fetches a collection from the server and mirrors it into the cache.
// It never fails: when the server cannot be used the cached snapshot is
// returned with Synced=false.
func (s *Service) Load(ctx context.Context, collection string) SyncResult {
	s.transition(collection, StateIdle, StateFetching)

	data, err := s.remote.List(ctx, collection)
	if err != nil {
		cached := s.cache.Read(ctx, collection)
		s.transition(collection, StateFetching, StateDegraded)
		s.log.Warnf("⚠️ %s: server unavailable, serving %d cached records: %v", collection, len(cached), err)
		metrics.IncLoad(collection, metrics.ResultDegraded)
		return SyncResult{Synced: false, Data: cached, State: StateDegraded, Err: err}
	}

	// Records still queued for the server survive the refresh
	pending := s.cache.Read(ctx, collection)
	snapshot := overlayPending(data, pending)

	s.writeSnapshot(ctx, collection, snapshot)
	s.transition(collection, StateFetching, StateSynced)
	s.log.Infof("✅ %s: loaded %d records from server", collection, len(snapshot))
	metrics.IncLoad(collection, metrics.ResultSynced)

	s.notifier.Emit(notify.EventDataSynced)
	return SyncResult{Synced: true, Data: snapshot, State: StateSynced}
}

// Save sends an entity to the server (create, or update when it has an id)
// and merges the server version into the cached snapshot.
//
// When the server cannot take it, the entity is queued in the cache tagged
// pending so the auto-sync runner can push it later, and a *SaveError wrapping
// the remote cause is returned.
func (s *Service) Save(ctx context.Context, collection string, entity models.Entity) (models.Entity, error) {
	local := entity.Clone()

	var saved models.Entity
	var err error
	if id, ok := local.ID(); ok {
		s.log.Debugf("📤 %s: updating record %d", collection, id)
		saved, err = s.remote.Update(ctx, collection, id, local)
	} else {
		s.log.Debugf("📤 %s: creating record", collection)
		saved, err = s.remote.Create(ctx, collection, local)
	}
	if err != nil {
		return s.queueLocally(ctx, collection, local, err)
	}

	snapshot := s.cache.Read(ctx, collection)
	snapshot = upsertEntity(snapshot, saved, local.LocalID())
	s.writeSnapshot(ctx, collection, snapshot)

	id, _ := saved.ID()
	s.log.Infof("✅ %s: saved record %d", collection, id)
	metrics.IncSave(collection, metrics.ResultSaved)

	s.notifier.Emit(notify.EventDataSynced)
	return saved, nil
}

// queueLocally keeps an entity the server did not accept
func (s *Service) queueLocally(ctx context.Context, collection string, local models.Entity, cause error) (models.Entity, error) {
	localID := local.EnsureLocalID()
	local.MarkPending()

	snapshot := s.cache.Read(ctx, collection)
	snapshot = upsertEntity(snapshot, local, localID)
	writeErr := s.cache.Write(ctx, collection, snapshot)

	s.log.Warnf("📥 %s: server did not accept record, queued locally as %s: %v", collection, localID, cause)
	metrics.IncSave(collection, metrics.ResultQueued)

	s.notifier.Emit(notify.EventDataSynced)
	return local, &SaveError{
		Collection:   collection,
		Entity:       local,
		SavedLocally: writeErr == nil,
		Cause:        cause,
	}
}

// Delete removes an entity on the server and, once the server agreed,
// drops it from the cached snapshot right away.
func (s *Service) Delete(ctx context.Context, collection string, id int64) error {
	if err := s.remote.DeleteByID(ctx, collection, id); err != nil {
		metrics.IncDelete(collection, metrics.ResultFailed)
		return fmt.Errorf("failed to delete %s/%d: %w", collection, id, err)
	}

	snapshot := s.cache.Read(ctx, collection)
	if remaining, removed := removeByID(snapshot, id); removed {
		s.writeSnapshot(ctx, collection, remaining)
	}

	s.log.Infof("🗑️ %s: deleted record %d", collection, id)
	metrics.IncDelete(collection, metrics.ResultDeleted)

	s.notifier.Emit(notify.EventDataSynced)
	return nil
}

// DiscardPending drops a queued record that never reached the server
func (s *Service) DiscardPending(ctx context.Context, collection, localID string) (bool, error) {
	snapshot := s.cache.Read(ctx, collection)
	remaining, removed := removeByLocalID(snapshot, localID)
	if !removed {
		return false, nil
	}
	if err := s.cache.Write(ctx, collection, remaining); err != nil {
		return false, fmt.Errorf("failed to discard %s/%s: %w", collection, localID, err)
	}

	s.log.Infof("🧹 %s: discarded queued record %s", collection, localID)
	s.notifier.Emit(notify.EventDataSynced)
	return true, nil
}

// Cached returns the current snapshot without contacting the server
func (s *Service) Cached(ctx context.Context, collection string) []models.Entity {
	return s.cache.Read(ctx, collection)
}

// ActiveOnly narrows a loaded collection to active records. A record
// without a status counts as active.
func ActiveOnly(entities []models.Entity) []models.Entity {
	return models.FilterActive(entities)
}

// PendingCount returns how many records of a collection wait for the server
func (s *Service) PendingCount(ctx context.Context, collection string) int {
	return countUnsynced(s.cache.Read(ctx, collection))
}

// writeSnapshot persists a snapshot; cache failures never fail the operation
func (s *Service) writeSnapshot(ctx context.Context, collection string, snapshot []models.Entity) {
	if err := s.cache.Write(ctx, collection, snapshot); err != nil {
		var quotaErr *cache.StorageQuotaError
		if errors.As(err, &quotaErr) {
			s.log.Warnf("💾 %s: snapshot kept in memory only: %v", collection, err)
			return
		}
		s.log.Errorf("🔴 %s: failed to persist snapshot: %v", collection, err)
	}
}

func (s *Service) transition(collection string, from, to SyncState) {
	s.log.Debugf("🔄 %s: %s → %s", collection, from, to)
}
