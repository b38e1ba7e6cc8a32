package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Field names shared by every collection.
// Fields prefixed with "_" are local bookkeeping and never leave the client.
const (
	FieldID      = "id"
	FieldStatus  = "status"
	FieldLocalID = "_localId"
	FieldPending = "_pending"

	StatusActive = "Active"
)

// Entity is one record of a collection. The schema is owned by the server,
// so records are kept as decoded JSON objects and round-trip untouched.
type Entity map[string]interface{}

// ID returns the server-assigned identifier, if any
func (e Entity) ID() (int64, bool) {
	raw, ok := e[FieldID]
	if !ok || raw == nil {
		return 0, false
	}

	switch v := raw.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), v == float64(int64(v))
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	}
	return 0, false
}

// HasID reports whether the entity carries a usable server id
func (e Entity) HasID() bool {
	_, ok := e.ID()
	return ok
}

// SetID stores the server id
func (e Entity) SetID(id int64) {
	e[FieldID] = id
}

// LocalID returns the client-side identifier assigned when the entity was queued
func (e Entity) LocalID() string {
	s, _ := e[FieldLocalID].(string)
	return s
}

// EnsureLocalID assigns a local identifier if the entity has none and returns it
func (e Entity) EnsureLocalID() string {
	if id := e.LocalID(); id != "" {
		return id
	}
	id := uuid.New().String()
	e[FieldLocalID] = id
	return id
}

// Pending reports whether the entity is waiting to reach the server
func (e Entity) Pending() bool {
	b, _ := e[FieldPending].(bool)
	return b
}

// MarkPending tags the entity as queued locally
func (e Entity) MarkPending() {
	e[FieldPending] = true
}

// Synced reports whether the server holds this exact version of the entity.
// An entity without an id, or one tagged pending, is unsynced.
func (e Entity) Synced() bool {
	return e.HasID() && !e.Pending()
}

// Status returns the raw status value ("" when absent)
func (e Entity) Status() string {
	s, _ := e[FieldStatus].(string)
	return s
}

// IsActive treats a missing or empty status the same as "Active"
func (e Entity) IsActive() bool {
	return IsActiveStatus(e.Status())
}

// IsActiveStatus is the shared active rule for raw status strings
func IsActiveStatus(status string) bool {
	status = strings.TrimSpace(status)
	return status == "" || status == StatusActive
}

// Clone returns a shallow copy; nested values are shared
func (e Entity) Clone() Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Payload returns a copy without local bookkeeping fields, ready for the server
func (e Entity) Payload() Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out
}

// Key identifies the entity inside a snapshot: server id first, local id otherwise
func (e Entity) Key() string {
	if id, ok := e.ID(); ok {
		return "id:" + strconv.FormatInt(id, 10)
	}
	if lid := e.LocalID(); lid != "" {
		return "local:" + lid
	}
	return ""
}

// FilterActive keeps only active entities, preserving order
func FilterActive(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// DecodeEntities parses a JSON array of entities, keeping numbers exact
func DecodeEntities(data []byte) ([]Entity, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Entity{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var entities []Entity
	if err := dec.Decode(&entities); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	if entities == nil {
		entities = []Entity{}
	}
	return entities, nil
}

// DecodeEntity parses a single JSON object
func DecodeEntity(data []byte) (Entity, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var e Entity
	if err := dec.Decode(&e); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("failed to decode entity: empty object")
	}
	return e, nil
}
