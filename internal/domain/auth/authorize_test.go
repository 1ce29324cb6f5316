package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func activeUser(role string) *User {
	return &User{
		ID:          "u-1",
		Role:        role,
		Permissions: PermissionsForRole(role),
		IsActive:    true,
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name  string
		user  *User
		perms []string
		want  error
	}{
		{"nil user", nil, []string{PermReadPayroll}, ErrUnauthenticated},
		{"inactive user", &User{Role: RoleFinance, Permissions: PermissionsForRole(RoleFinance)}, []string{PermReadPayroll}, ErrUnauthenticated},
		{"holds permission", activeUser(RoleFinance), []string{PermCreatePayroll}, nil},
		{"missing permission", activeUser(RoleEmployee), []string{PermCreatePayroll}, ErrForbidden},
		{"or-check passes on any match", activeUser(RoleEmployee), []string{PermCreatePayroll, PermReadPayroll}, nil},
		{"no required permissions", activeUser(RoleEmployee), nil, nil},
		{"superadmin passes everything", activeUser(RoleSuperAdmin), []string{PermDeleteUser}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Authorize(tc.user, tc.perms...), tc.want)
		})
	}
}

func TestRequireSuperAdminExactRole(t *testing.T) {
	assert.ErrorIs(t, RequireSuperAdmin(nil), ErrUnauthenticated)
	assert.NoError(t, RequireSuperAdmin(activeUser(RoleSuperAdmin)))

	inactive := activeUser(RoleSuperAdmin)
	inactive.IsActive = false
	assert.ErrorIs(t, RequireSuperAdmin(inactive), ErrSuperAdminRequired)

	// Holding every permission is not the same as being SuperAdmin.
	impostor := activeUser(RoleAdmin)
	impostor.Permissions = PermissionsForRole(RoleSuperAdmin)
	assert.ErrorIs(t, RequireSuperAdmin(impostor), ErrSuperAdminRequired)
}

func TestHasAnyPermission(t *testing.T) {
	user := User{Permissions: []string{PermReadPayroll, PermReadEmployee}}
	assert.True(t, user.HasAnyPermission(PermReadPayroll))
	assert.True(t, user.HasAnyPermission(PermCreatePayroll, PermReadEmployee))
	assert.False(t, user.HasAnyPermission(PermCreatePayroll))
	assert.False(t, user.HasAnyPermission())
}
