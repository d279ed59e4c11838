package domain

import "github.com/google/uuid"

// Role identifies the back-office role of an authenticated user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
	RoleViewer  Role = "viewer"
)

// Capability names a single permissioned action.
type Capability string

const (
	CapBookingCreate Capability = "booking:create"
	CapBookingEdit   Capability = "booking:edit"
	CapBookingCancel Capability = "booking:cancel"
)

// Actor is the authenticated user on whose behalf an operation runs.
// Every mutating operation takes an explicit Actor; there is no ambient
// auth context.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// PermissionOracle answers whether an actor holds a capability. It is
// consulted before every mutating operation.
type PermissionOracle interface {
	Allows(actor Actor, capability Capability) bool
}
