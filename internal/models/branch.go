package models

import (
	"encoding/json"
	"fmt"
)

// CollectionBranches is the collection holding transport branches
const CollectionBranches = "branches"

// Branch is the typed view of an entity in the "branches" collection
// Convention: Go PascalCase -> JSON camelCase, matching the server payloads
type Branch struct {
	ID         *int64 `json:"id,omitempty"`
	BranchName string `json:"branchName"`
	BranchCode string `json:"branchCode,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Status     string `json:"status,omitempty"`
}

// IsActive applies the shared active rule (missing status means active)
func (b Branch) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// BranchFromEntity converts a generic entity into a Branch
func BranchFromEntity(e Entity) (Branch, error) {
	var b Branch

	data, err := json.Marshal(e.Payload())
	if err != nil {
		return b, fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("failed to unmarshal branch: %w", err)
	}
	return b, nil
}

// ToEntity converts the branch back into a generic entity
func (b Branch) ToEntity() (Entity, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal branch: %w", err)
	}
	return DecodeEntity(data)
}
