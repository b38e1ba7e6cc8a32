package sync

import "github.com/xelth-com/ecktms/internal/models"

// upsertEntity replaces the record matching e's server id or the given local id,
// or appends e when nothing matches. Order of the other records is kept.
func upsertEntity(snapshot []models.Entity, e models.Entity, localID string) []models.Entity {
	id, hasID := e.ID()
	for i, cur := range snapshot {
		if hasID {
			if curID, ok := cur.ID(); ok && curID == id {
				snapshot[i] = e
				return snapshot
			}
		}
		if localID != "" && cur.LocalID() == localID {
			snapshot[i] = e
			return snapshot
		}
	}
	return append(snapshot, e)
}

// removeByID drops every record with the given server id
func removeByID(snapshot []models.Entity, id int64) ([]models.Entity, bool) {
	out := snapshot[:0:0]
	removed := false
	for _, cur := range snapshot {
		if curID, ok := cur.ID(); ok && curID == id {
			removed = true
			continue
		}
		out = append(out, cur)
	}
	return out, removed
}

// removeByLocalID drops the queued record with the given local id
func removeByLocalID(snapshot []models.Entity, localID string) ([]models.Entity, bool) {
	out := snapshot[:0:0]
	removed := false
	for _, cur := range snapshot {
		if localID != "" && cur.LocalID() == localID {
			removed = true
			continue
		}
		out = append(out, cur)
	}
	return out, removed
}

// overlayPending lays records still waiting for the server on top of a fresh
// server snapshot: a pending edit of a known id replaces the server version in
// place, a pending record without id is appended.
func overlayPending(server, cached []models.Entity) []models.Entity {
	out := server
	for _, cur := range cached {
		if cur.Synced() {
			continue
		}
		out = upsertEntity(out, cur, cur.LocalID())
	}
	return out
}

// countUnsynced counts records that have not reached the server
func countUnsynced(snapshot []models.Entity) int {
	n := 0
	for _, e := range snapshot {
		if !e.Synced() {
			n++
		}
	}
	return n
}
