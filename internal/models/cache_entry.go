package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CacheEntry is one collection snapshot in the local cache.
// The whole collection lives in Payload; there are no per-record rows.
type CacheEntry struct {
	Collection string         `gorm:"type:varchar(100);primaryKey" json:"collection"`
	Payload    datatypes.JSON `gorm:"not null" json:"payload"`
	Size       int            `gorm:"not null;default:0" json:"size"`
	Count      int            `gorm:"not null;default:0" json:"count"`
	UpdatedAt  time.Time      `gorm:"index:idx_cache_updated" json:"updatedAt"`
}

// TableName specifies the table name
func (CacheEntry) TableName() string {
	return "local_cache_entries"
}

// BeforeSave keeps Size in step with the payload
func (c *CacheEntry) BeforeSave(tx *gorm.DB) error {
	c.Size = len(c.Payload)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	return nil
}
