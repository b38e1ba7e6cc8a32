package sync

import (
	"fmt"

	"github.com/xelth-com/ecktms/internal/models"
)

// SaveError is returned when an entity could not reach the server.
// By the time the caller sees it, the entity has been queued in the local cache
// (unless SavedLocally is false because the cache itself refused the write).
// The remote cause (*remote.RejectedError or *remote.TransportError) is reachable via errors.As.
type SaveError struct {
	Collection   string
	Entity       models.Entity // the queued copy, tagged pending
	SavedLocally bool
	Cause        error
}

func (e *SaveError) Error() string {
	if e.SavedLocally {
		return fmt.Sprintf("%s: saved locally only: %v", e.Collection, e.Cause)
	}
	return fmt.Sprintf("%s: not saved (server and local cache both failed): %v", e.Collection, e.Cause)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
