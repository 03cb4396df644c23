package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned by ParseRole for values outside the role set.
var ErrUnknownRole = errors.New("unknown role")

// Role is the category assigned to a user. It governs UI and API access.
type Role string

const (
	// RoleManagement has full read and write access, including user management.
	RoleManagement Role = "management"
	// RoleDevOps operates the monitored systems and owns alerts.
	RoleDevOps Role = "devops"
	// RoleQA has read access to health and performance data.
	RoleQA Role = "qa"
	// RoleDev has read access to health and performance data.
	RoleDev Role = "dev"
	// RoleOther is the default role for new accounts.
	RoleOther Role = "other"
)

// DefaultRole is assigned when an account is created without a role.
const DefaultRole = RoleOther

// Roles returns every role in a stable order.
func Roles() []Role {
	return []Role{RoleManagement, RoleDevOps, RoleQA, RoleDev, RoleOther}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleManagement, RoleDevOps, RoleQA, RoleDev, RoleOther:
		return true
	}

	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts s into a Role. Matching ignores case and surrounding space.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}

	return r, nil
}
