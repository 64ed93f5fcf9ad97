package domain

import dErrors "vigil/pkg/domain-errors"

// Actor is an external identity that performs events. Created by an
// administrative flow (out of scope); read by ingestion and scoring.
//
// Invariant: ID is immutable once assigned.
type Actor struct {
	ID          string
	DisplayName string
	Department  Department
	Role        Role
	Active      bool
}

// NewActor constructs an Actor, validating the department and role enums.
func NewActor(id, displayName string, department Department, role Role, active bool) (*Actor, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "actor id cannot be empty")
	}
	if !department.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid actor department")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid actor role")
	}
	return &Actor{
		ID:          id,
		DisplayName: displayName,
		Department:  department,
		Role:        role,
		Active:      active,
	}, nil
}
