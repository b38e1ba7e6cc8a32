package sync

import (
	"context"

	"github.com/xelth-com/ecktms/internal/models"
)

// SyncState is the per-call reconciliation state. It is transient:
// every Load starts at IDLE and ends at SYNCED or DEGRADED.
type SyncState string

const (
	StateIdle     SyncState = "IDLE"
	StateFetching SyncState = "FETCHING"
	StateSynced   SyncState = "SYNCED"
	StateDegraded SyncState = "DEGRADED"
)

// SyncResult is the outcome of a Load.
// Synced is true when Data came from the remote store during this call;
// otherwise Data is the last cached snapshot (possibly stale or empty).
type SyncResult struct {
	Synced bool            `json:"synced"`
	Data   []models.Entity `json:"data"`

	State SyncState `json:"-"`
	Err   error     `json:"-"` // remote failure behind a degraded result
}

// RemoteStore is the authoritative REST service
type RemoteStore interface {
	List(ctx context.Context, collection string) ([]models.Entity, error)
	Create(ctx context.Context, collection string, entity models.Entity) (models.Entity, error)
	Update(ctx context.Context, collection string, id int64, entity models.Entity) (models.Entity, error)
	DeleteByID(ctx context.Context, collection string, id int64) error
}

// LocalCache holds one snapshot per collection
type LocalCache interface {
	Read(ctx context.Context, collection string) []models.Entity
	Write(ctx context.Context, collection string, entities []models.Entity) error
	Collections(ctx context.Context) []string
}

// ChangeNotifier broadcasts named events to listeners
type ChangeNotifier interface {
	Emit(event string)
}
