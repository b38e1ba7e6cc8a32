package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xelth-com/ecktms/internal/metrics"
	"github.com/xelth-com/ecktms/internal/models"
	"go.uber.org/zap"
)

// LocalCache holds the last-known-good snapshot of each collection.
// It only replaces whole collections; merging records is the sync service's job.
type LocalCache struct {
	store Store
	log   *zap.SugaredLogger
}

// New wraps a store
func New(store Store, log *zap.SugaredLogger) *LocalCache {
	return &LocalCache{store: store, log: log}
}

// Read returns the snapshot for a collection, or an empty slice.
// Backend failures are logged and read as "absent".
func (c *LocalCache) Read(ctx context.Context, collection string) []models.Entity {
	payload, ok, err := c.store.Get(ctx, collection)
	if err != nil {
		c.log.Warnf("⚠️ Cache read failed for %s, treating as empty: %v", collection, err)
		return []models.Entity{}
	}
	if !ok {
		return []models.Entity{}
	}

	entities, err := models.DecodeEntities(payload)
	if err != nil {
		c.log.Warnf("⚠️ Cache entry for %s is corrupt, treating as empty: %v", collection, err)
		return []models.Entity{}
	}
	return entities
}

// Write replaces the snapshot for a collection.
// A *StorageQuotaError means the write was dropped; callers keep their in-memory data.
func (c *LocalCache) Write(ctx context.Context, collection string, entities []models.Entity) error {
	if entities == nil {
		entities = []models.Entity{}
	}

	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", collection, err)
	}

	if err := c.store.Put(ctx, collection, payload, len(entities)); err != nil {
		var quotaErr *StorageQuotaError
		if errors.As(err, &quotaErr) {
			metrics.IncCacheQuotaError(collection)
			c.log.Warnf("💾 Cache quota exhausted, %s snapshot not persisted: %v", collection, err)
			return err
		}
		c.log.Errorf("🔴 Cache write failed for %s: %v", collection, err)
		return err
	}

	c.log.Debugf("💾 Cached %d %s (%d bytes)", len(entities), collection, len(payload))
	return nil
}

// Collections lists the collections currently cached
func (c *LocalCache) Collections(ctx context.Context) []string {
	names, err := c.store.Collections(ctx)
	if err != nil {
		c.log.Warnf("⚠️ Cache listing failed: %v", err)
		return nil
	}
	return names
}

// Clear drops every snapshot
func (c *LocalCache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.log.Info("🧹 Local cache cleared")
	return nil
}
