package cache

import "fmt"

// StorageQuotaError reports a write dropped because the cache is full
type StorageQuotaError struct {
	Collection string
	Needed     int64
	Limit      int64
}

func (e *StorageQuotaError) Error() string {
	return fmt.Sprintf("storage quota exceeded writing %q: need %d bytes, limit %d", e.Collection, e.Needed, e.Limit)
}

// checkQuota returns a StorageQuotaError when used+size would pass limit (0 = unlimited)
func checkQuota(collection string, used, size, limit int64) error {
	if limit <= 0 {
		return nil
	}
	if used+size > limit {
		return &StorageQuotaError{Collection: collection, Needed: used + size, Limit: limit}
	}
	return nil
}
