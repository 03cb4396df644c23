package rbac

import (
	"sort"
	"strings"
)

// Permission is an opaque "resource:action" token. Equality is exact string match.
type Permission string

// Resources protected by the dashboard.
const (
	ResourceDashboard    = "dashboard"
	ResourceSystemHealth = "system-health"
	ResourcePerformance  = "performance"
	ResourceAlerts       = "alerts"
	ResourceUsers        = "users"
	ResourceSettings     = "settings"
)

// Actions that can be granted on a resource.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// Permission constants define the available permissions in the system.
const (
	// PermDashboardRead allows viewing the main dashboard.
	PermDashboardRead Permission = ResourceDashboard + ":" + ActionRead
	// PermDashboardWrite allows changing dashboard layouts and widgets.
	PermDashboardWrite Permission = ResourceDashboard + ":" + ActionWrite

	// PermSystemHealthRead allows viewing system health metrics.
	PermSystemHealthRead Permission = ResourceSystemHealth + ":" + ActionRead
	// PermSystemHealthWrite allows managing health checks.
	PermSystemHealthWrite Permission = ResourceSystemHealth + ":" + ActionWrite

	// PermPerformanceRead allows viewing performance charts.
	PermPerformanceRead Permission = ResourcePerformance + ":" + ActionRead
	// PermPerformanceWrite allows managing performance probes.
	PermPerformanceWrite Permission = ResourcePerformance + ":" + ActionWrite

	// PermAlertsRead allows viewing alerts.
	PermAlertsRead Permission = ResourceAlerts + ":" + ActionRead
	// PermAlertsWrite allows acknowledging and configuring alerts.
	PermAlertsWrite Permission = ResourceAlerts + ":" + ActionWrite

	// PermUsersRead allows listing user accounts.
	PermUsersRead Permission = ResourceUsers + ":" + ActionRead
	// PermUsersWrite allows creating, updating and deactivating user accounts.
	PermUsersWrite Permission = ResourceUsers + ":" + ActionWrite

	// PermSettingsRead allows viewing application settings.
	PermSettingsRead Permission = ResourceSettings + ":" + ActionRead
	// PermSettingsWrite allows changing application settings.
	PermSettingsWrite Permission = ResourceSettings + ":" + ActionWrite
)

// NewPermission joins resource and action.
func NewPermission(resource, action string) Permission {
	return Permission(resource + ":" + action)
}

// Split returns the resource and action parts. A token without a colon has
// an empty action.
func (p Permission) Split() (resource, action string) {
	resource, action, _ = strings.Cut(string(p), ":")

	return resource, action
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// PermissionSet is a membership set of permissions. The zero value is an
// empty set and safe to query.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from perms.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}

	return set
}

// Contains reports whether p is in the set.
func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]

	return ok
}

// Len returns the number of permissions in the set.
func (s PermissionSet) Len() int {
	return len(s)
}

// Sorted returns the permissions in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
