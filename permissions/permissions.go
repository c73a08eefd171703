// Package permissions holds the closed role set and the capability
// checks every mutating handler runs before touching state.
package permissions

import (
	"fmt"
)

// Role is the closed set of staff tiers. Persisted as its string form.
type Role string

const (
	// RoleSuperAdmin bypasses all branch scoping.
	RoleSuperAdmin Role = "superadmin"
	// RoleBranchAdmin has full access within its own branch.
	RoleBranchAdmin Role = "branch-admin"
	// RoleCustom is a restricted front-desk tier bound to its branch.
	RoleCustom Role = "custom"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleBranchAdmin, RoleCustom:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Actor is the explicit request context: who is calling, with which role,
// assigned to which branch. BranchID is nil only for superadmin.
type Actor struct {
	UserID   uint
	Role     Role
	BranchID *uint
}

// CheckBranchPermissions reports whether the actor may operate on the
// target branch. Superadmin always may; a nil target means the operation
// is branch-agnostic and is permitted; otherwise the actor's assigned
// branch must match.
func CheckBranchPermissions(role Role, userBranchID, targetBranchID *uint) bool {
	if role == RoleSuperAdmin {
		return true
	}
	if targetBranchID == nil {
		return true
	}
	return userBranchID != nil && *userBranchID == *targetBranchID
}

// EffectiveBranch resolves the branch a mutation applies to. The custom
// tier is forced onto its own assigned branch regardless of the requested
// one, so a crafted payload cannot escalate across branches.
func EffectiveBranch(actor Actor, requested uint) (uint, bool) {
	switch actor.Role {
	case RoleSuperAdmin:
		return requested, true
	case RoleCustom:
		if actor.BranchID == nil {
			return 0, false
		}
		return *actor.BranchID, true
	default:
		if actor.BranchID == nil || *actor.BranchID != requested {
			return 0, false
		}
		return requested, true
	}
}

// Module/action capability grid. Superadmin and branch-admin hold every
// capability (branch-admin is still branch-scoped by the checks above);
// the custom tier gets the front-desk subset.
var customCapabilities = map[string]bool{
	"reservations.view":   true,
	"reservations.create": true,
	"reservations.edit":   true,
	"reservations.delete": true,
	"rooms.view":          true,
	"guests.view":         true,
	"guests.create":       true,
	"guests.edit":         true,
	"taxes.view":          true,
	"branches.view":       true,
}

// HasPermission is the module/action gate consulted before every mutation.
func HasPermission(actor Actor, module, action string) bool {
	switch actor.Role {
	case RoleSuperAdmin, RoleBranchAdmin:
		return true
	case RoleCustom:
		return customCapabilities[module+"."+action]
	}
	return false
}
