package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xelth-com/ecktms/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps snapshots in the local_cache_entries table
type GormStore struct {
	db       *gorm.DB
	maxBytes int64
}

// NewGormStore migrates the cache table and returns a store on top of db
func NewGormStore(db *gorm.DB, maxBytes int64) (*GormStore, error) {
	if err := db.AutoMigrate(&models.CacheEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate cache table: %w", err)
	}
	return &GormStore{db: db, maxBytes: maxBytes}, nil
}

func (s *GormStore) Get(ctx context.Context, collection string) ([]byte, bool, error) {
	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Where("collection = ?", collection).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", collection, err)
	}
	return []byte(entry.Payload), true, nil
}

func (s *GormStore) Put(ctx context.Context, collection string, payload []byte, count int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.maxBytes > 0 {
			var used int64
			err := tx.Model(&models.CacheEntry{}).
				Where("collection <> ?", collection).
				Select("COALESCE(SUM(size), 0)").
				Scan(&used).Error
			if err != nil {
				return fmt.Errorf("failed to measure cache usage: %w", err)
			}
			if err := checkQuota(collection, used, int64(len(payload)), s.maxBytes); err != nil {
				return err
			}
		}

		entry := models.CacheEntry{
			Collection: collection,
			Payload:    datatypes.JSON(payload),
			Count:      count,
			UpdatedAt:  time.Now().UTC(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "size", "count", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("failed to write cache entry %s: %w", collection, err)
		}
		return nil
	})
}

func (s *GormStore) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.CacheEntry{}).Order("collection").Pluck("collection", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	return names, nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CacheEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
