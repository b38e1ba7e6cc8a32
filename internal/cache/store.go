package cache

import "context"

// Store is a string-keyed persistent snapshot store.
// Keys are collection names, values are JSON arrays of entities.
type Store interface {
	// Get returns the payload for a collection; ok is false when absent
	Get(ctx context.Context, collection string) (payload []byte, ok bool, err error)

	// Put replaces the payload for a collection
	Put(ctx context.Context, collection string, payload []byte, count int) error

	// Collections lists the stored collection names
	Collections(ctx context.Context) ([]string, error)

	// Clear removes every snapshot
	Clear(ctx context.Context) error
}
