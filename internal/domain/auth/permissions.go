package auth

const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleHR         = "HR"
	RoleFinance    = "Finance"
	RoleEmployee   = "Employee"
)

var Roles = []string{RoleSuperAdmin, RoleAdmin, RoleHR, RoleFinance, RoleEmployee}

const (
	PermCreateUser        = "create_user"
	PermReadUser          = "read_user"
	PermUpdateUser        = "update_user"
	PermDeleteUser        = "delete_user"
	PermCreateEmployee    = "create_employee"
	PermReadEmployee      = "read_employee"
	PermUpdateEmployee    = "update_employee"
	PermDeleteEmployee    = "delete_employee"
	PermCreatePayroll     = "create_payroll"
	PermReadPayroll       = "read_payroll"
	PermUpdatePayroll     = "update_payroll"
	PermDeletePayroll     = "delete_payroll"
	PermApprovePayroll    = "approve_payroll"
	PermReadLeave         = "read_leave"
	PermApproveLeave      = "approve_leave"
	PermCreateLeave       = "create_leave"
	PermUpdateLeave       = "update_leave"
	PermReadAttendance    = "read_attendance"
	PermUpdateAttendance  = "update_attendance"
	PermReadAudit         = "read_audit"
	PermReadNotifications = "read_notifications"
	PermCreateDepartment  = "create_department"
	PermUpdateDepartment  = "update_department"
	PermDeleteDepartment  = "delete_department"
	PermReadDepartment    = "read_department"
)

// AllPermissions is the closed capability set. SuperAdmin holds all of it.
var AllPermissions = []string{
	PermCreateUser,
	PermReadUser,
	PermUpdateUser,
	PermDeleteUser,
	PermCreateEmployee,
	PermReadEmployee,
	PermUpdateEmployee,
	PermDeleteEmployee,
	PermCreatePayroll,
	PermReadPayroll,
	PermUpdatePayroll,
	PermDeletePayroll,
	PermApprovePayroll,
	PermReadLeave,
	PermApproveLeave,
	PermCreateLeave,
	PermUpdateLeave,
	PermReadAttendance,
	PermUpdateAttendance,
	PermReadAudit,
	PermReadNotifications,
	PermCreateDepartment,
	PermUpdateDepartment,
	PermDeleteDepartment,
	PermReadDepartment,
}

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermReadUser,
		PermUpdateUser,
		PermCreateEmployee,
		PermReadEmployee,
		PermUpdateEmployee,
		PermReadPayroll,
		PermUpdatePayroll,
		PermApprovePayroll,
		PermReadLeave,
		PermApproveLeave,
		PermUpdateLeave,
		PermReadAttendance,
		PermUpdateAttendance,
		PermReadNotifications,
	},
	RoleHR: {
		PermCreateEmployee,
		PermReadEmployee,
		PermUpdateEmployee,
		PermReadPayroll,
		PermReadLeave,
		PermApproveLeave,
		PermCreateLeave,
		PermUpdateLeave,
		PermReadAttendance,
		PermUpdateAttendance,
		PermReadNotifications,
	},
	RoleFinance: {
		PermReadEmployee,
		PermCreatePayroll,
		PermReadPayroll,
		PermUpdatePayroll,
		PermApprovePayroll,
		PermReadNotifications,
	},
	RoleEmployee: {
		PermReadEmployee,
		PermReadPayroll,
		PermCreateLeave,
		PermReadLeave,
		PermReadAttendance,
		PermReadNotifications,
	},
}

// PermissionsForRole derives the default permission set for a role. The
// result fully replaces any previously granted set whenever a user's
// role is set or changed; custom grants do not survive a role change.
func PermissionsForRole(role string) []string {
	if role == RoleSuperAdmin {
		out := make([]string, len(AllPermissions))
		copy(out, AllPermissions)
		return out
	}
	perms, ok := RolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

func ValidPermission(perm string) bool {
	for _, p := range AllPermissions {
		if p == perm {
			return true
		}
	}
	return false
}
