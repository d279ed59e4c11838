package auth

import "github.com/stayops/service-booking/internal/domain"

// rolePermissions maps each back-office role to the capabilities it holds.
// Viewers hold none; agents can create and edit but not cancel.
var rolePermissions = map[domain.Role][]domain.Capability{
	domain.RoleAdmin: {
		domain.CapBookingCreate,
		domain.CapBookingEdit,
		domain.CapBookingCancel,
	},
	domain.RoleManager: {
		domain.CapBookingCreate,
		domain.CapBookingEdit,
		domain.CapBookingCancel,
	},
	domain.RoleAgent: {
		domain.CapBookingCreate,
		domain.CapBookingEdit,
	},
	domain.RoleViewer: {},
}

// RoleOracle answers capability checks from the static role table. It
// implements domain.PermissionOracle.
type RoleOracle struct{}

// NewRoleOracle creates a RoleOracle.
func NewRoleOracle() *RoleOracle {
	return &RoleOracle{}
}

// Allows reports whether the actor's role holds the capability.
func (o *RoleOracle) Allows(actor domain.Actor, capability domain.Capability) bool {
	for _, c := range rolePermissions[actor.Role] {
		if c == capability {
			return true
		}
	}
	return false
}
