package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestParseRole(t *testing.T) {
	for _, s := range []string{"superadmin", "branch-admin", "custom"} {
		role, err := ParseRole(s)
		assert.NoError(t, err)
		assert.Equal(t, Role(s), role)
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestCheckBranchPermissions(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		user   *uint
		target *uint
		want   bool
	}{
		{"superadmin any branch", RoleSuperAdmin, nil, uintPtr(7), true},
		{"nil target is branch-agnostic", RoleBranchAdmin, uintPtr(1), nil, true},
		{"branch-admin own branch", RoleBranchAdmin, uintPtr(1), uintPtr(1), true},
		{"branch-admin other branch", RoleBranchAdmin, uintPtr(1), uintPtr(2), false},
		{"custom own branch", RoleCustom, uintPtr(3), uintPtr(3), true},
		{"custom other branch", RoleCustom, uintPtr(3), uintPtr(4), false},
		{"no assigned branch", RoleBranchAdmin, nil, uintPtr(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckBranchPermissions(tt.role, tt.user, tt.target))
		})
	}
}

func TestEffectiveBranch(t *testing.T) {
	t.Run("superadmin takes the requested branch", func(t *testing.T) {
		got, ok := EffectiveBranch(Actor{Role: RoleSuperAdmin}, 9)
		assert.True(t, ok)
		assert.Equal(t, uint(9), got)
	})

	t.Run("custom is forced onto its own branch", func(t *testing.T) {
		got, ok := EffectiveBranch(Actor{Role: RoleCustom, BranchID: uintPtr(2)}, 9)
		assert.True(t, ok)
		assert.Equal(t, uint(2), got)
	})

	t.Run("custom without a branch is rejected", func(t *testing.T) {
		_, ok := EffectiveBranch(Actor{Role: RoleCustom}, 9)
		assert.False(t, ok)
	})

	t.Run("branch-admin must match the requested branch", func(t *testing.T) {
		got, ok := EffectiveBranch(Actor{Role: RoleBranchAdmin, BranchID: uintPtr(5)}, 5)
		assert.True(t, ok)
		assert.Equal(t, uint(5), got)

		_, ok = EffectiveBranch(Actor{Role: RoleBranchAdmin, BranchID: uintPtr(5)}, 6)
		assert.False(t, ok)
	})
}

func TestHasPermission(t *testing.T) {
	super := Actor{Role: RoleSuperAdmin}
	admin := Actor{Role: RoleBranchAdmin, BranchID: uintPtr(1)}
	custom := Actor{Role: RoleCustom, BranchID: uintPtr(1)}

	assert.True(t, HasPermission(super, "branches", "delete"))
	assert.True(t, HasPermission(admin, "rooms", "edit"))

	assert.True(t, HasPermission(custom, "reservations", "create"))
	assert.True(t, HasPermission(custom, "guests", "edit"))
	assert.False(t, HasPermission(custom, "rooms", "edit"))
	assert.False(t, HasPermission(custom, "branches", "delete"))
	assert.False(t, HasPermission(custom, "taxes", "edit"))

	assert.False(t, HasPermission(Actor{Role: "unknown"}, "reservations", "view"))
}
