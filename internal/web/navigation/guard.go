package navigation

import (
	"slices"

	"github.com/HealthDash/HealthDash/internal/rbac"
)

const (
	// LoginPath is where unauthenticated sessions are sent.
	LoginPath = "/login"

	// DashboardPath is the default landing route of an authenticated session.
	DashboardPath = "/dashboard"
)

// State is the outcome class of a guard evaluation.
type State int

const (
	// StateLoading means session restoration is still running; render nothing
	// and evaluate again once it completes.
	StateLoading State = iota
	// StateUnauthenticated means the session is not logged in.
	StateUnauthenticated
	// StateForbidden means the session's role failed the route restriction.
	StateForbidden
	// StateAllowed means the guarded content may render.
	StateAllowed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateForbidden:
		return "forbidden"
	case StateAllowed:
		return "allowed"
	}

	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Viewer is the read-only view of a session the guard needs.
type Viewer interface {
	// Authenticated reports whether the session is logged in.
	Authenticated() bool
	// CurrentRole returns the user's role, false when there is no user.
	CurrentRole() (rbac.Role, bool)
}

// RouteRule restricts a navigational route or UI action. A rule without a
// permission and without roles is open to any authenticated session.
type RouteRule struct {
	Path               string          `json:"path"`
	RequiredPermission rbac.Permission `json:"required_permission,omitempty"`
	AllowedRoles       []rbac.Role     `json:"allowed_roles,omitempty"`
}

// Decision is the guard's verdict. Redirect is empty unless the caller must
// navigate elsewhere.
type Decision struct {
	State    State  `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}

// Allowed reports whether the guarded content may render.
func (d Decision) Allowed() bool {
	return d.State == StateAllowed
}

// Evaluate decides whether viewer may reach rule. restoring must be true
// while a session restore is in flight.
func Evaluate(viewer Viewer, restoring bool, rule RouteRule) Decision {
	if restoring {
		return Decision{State: StateLoading}
	}

	if viewer == nil || !viewer.Authenticated() {
		return Decision{State: StateUnauthenticated, Redirect: LoginPath}
	}

	if !rule.permits(viewer) {
		return Decision{State: StateForbidden, Redirect: DashboardPath}
	}

	return Decision{State: StateAllowed}
}

// permits applies the role restriction and the permission requirement.
// An empty AllowedRoles list admits every role.
func (r RouteRule) permits(viewer Viewer) bool {
	role, ok := viewer.CurrentRole()

	if len(r.AllowedRoles) > 0 && (!ok || !slices.Contains(r.AllowedRoles, role)) {
		return false
	}

	if r.RequiredPermission != "" && (!ok || !rbac.RoleHas(role, r.RequiredPermission)) {
		return false
	}

	return true
}

// Principal is a Viewer for an already authenticated caller, for example the
// subject of a verified access token.
type Principal struct {
	Role rbac.Role
}

// Authenticated implements Viewer.
func (p Principal) Authenticated() bool {
	return true
}

// CurrentRole implements Viewer.
func (p Principal) CurrentRole() (rbac.Role, bool) {
	return p.Role, true
}
