package rbac

// grants returns the static permission list of a role. The switch lists every
// role; an unknown role falls through to nil so lookups fail closed.
func grants(role Role) []Permission {
	switch role {
	case RoleManagement:
		return []Permission{
			PermDashboardRead, PermDashboardWrite,
			PermSystemHealthRead, PermSystemHealthWrite,
			PermPerformanceRead, PermPerformanceWrite,
			PermAlertsRead, PermAlertsWrite,
			PermUsersRead, PermUsersWrite,
			PermSettingsRead, PermSettingsWrite,
		}
	case RoleDevOps:
		return []Permission{
			PermDashboardRead,
			PermSystemHealthRead, PermSystemHealthWrite,
			PermPerformanceRead, PermPerformanceWrite,
			PermAlertsRead, PermAlertsWrite,
			PermSettingsRead,
		}
	case RoleQA, RoleDev:
		return []Permission{
			PermDashboardRead,
			PermSystemHealthRead,
			PermPerformanceRead,
			PermSettingsRead,
		}
	case RoleOther:
		return []Permission{
			PermDashboardRead,
			PermSystemHealthRead,
		}
	}

	return nil
}

// PermissionsFor returns the permission set of role. It never fails: a role
// outside the table yields the empty set. The caller owns the returned set.
func PermissionsFor(role Role) PermissionSet {
	return NewPermissionSet(grants(role)...)
}

// RoleHas reports whether role is granted p.
func RoleHas(role Role, p Permission) bool {
	for _, granted := range grants(role) {
		if granted == p {
			return true
		}
	}

	return false
}

// RoleHasAny reports whether role is granted at least one of perms.
func RoleHasAny(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if RoleHas(role, p) {
			return true
		}
	}

	return false
}

// RoleHasAll reports whether role is granted every one of perms.
func RoleHasAll(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !RoleHas(role, p) {
			return false
		}
	}

	return true
}
