package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

const (
	localsUser  = "CurrentUser"
	localsToken = "AccessToken"
)

// DetailNotEnoughPermissions is the body detail of 403 responses.
const DetailNotEnoughPermissions = "Not enough permissions"

// SetCurrentUser stores the authenticated user and its bearer token on c.
func SetCurrentUser(c *fiber.Ctx, user *models.User, token string) {
	c.Locals(localsUser, user)
	c.Locals(localsToken, token)
}

// CurrentUser returns the user stored by SetCurrentUser, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)

	return user
}

// CurrentToken returns the bearer token stored by SetCurrentUser.
func CurrentToken(c *fiber.Ctx) string {
	token, _ := c.Locals(localsToken).(string)

	return token
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(permission rbac.Permission) fiber.Handler {
	return requirePermission(func(role rbac.Role) bool {
		return rbac.RoleHas(role, permission)
	}, permission)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(permissions ...rbac.Permission) fiber.Handler {
	return requirePermission(func(role rbac.Role) bool {
		return rbac.RoleHasAny(role, permissions...)
	}, permissions...)
}

// RequireAllPermissions creates Fiber middleware that requires all the given permissions.
func RequireAllPermissions(permissions ...rbac.Permission) fiber.Handler {
	return requirePermission(func(role rbac.Role) bool {
		return rbac.RoleHasAll(role, permissions...)
	}, permissions...)
}

func requirePermission(allowed func(rbac.Role) bool, permissions ...rbac.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(api.ErrorResponse{Detail: "Not authenticated"})
		}

		if !allowed(user.Role) {
			log.Warn().Uint64("user_id", user.ID).Str("role", user.Role.String()).
				Interface("permissions", permissions).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(api.ErrorResponse{Detail: DetailNotEnoughPermissions})
		}

		return c.Next()
	}
}
