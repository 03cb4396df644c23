package session

import (
	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// Session is the client held authentication state.
type Session struct {
	IsAuthenticated bool      `json:"is_authenticated"`
	User            *api.User `json:"user,omitempty"`
	AccessToken     string    `json:"-"`
	RefreshToken    string    `json:"-"`
}

// Authenticated implements navigation.Viewer.
func (s Session) Authenticated() bool {
	return s.IsAuthenticated
}

// CurrentRole implements navigation.Viewer.
func (s Session) CurrentRole() (rbac.Role, bool) {
	if s.User == nil {
		return "", false
	}

	return s.User.Role, true
}

// HasPermission reports whether the session user's role grants p. It is
// false whenever there is no user.
func (s Session) HasPermission(p rbac.Permission) bool {
	role, ok := s.CurrentRole()
	if !ok {
		return false
	}

	return rbac.RoleHas(role, p)
}

func (s Session) clone() Session {
	s.User = s.User.Clone()

	return s
}
