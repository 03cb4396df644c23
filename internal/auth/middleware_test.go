package auth

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/db/models"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

func newGuardedApp(user *models.User, guard fiber.Handler) *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			SetCurrentUser(c, user, "tok")
		}

		return c.Next()
	})

	app.Get("/", guard, func(c *fiber.Ctx) error {
		return c.SendString(CurrentToken(c))
	})

	return app
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name   string
		user   *models.User
		guard  fiber.Handler
		status int
	}{
		{
			name:   "anonymous",
			guard:  RequirePermission(rbac.PermDashboardRead),
			status: fiber.StatusUnauthorized,
		},
		{
			name:   "granted",
			user:   &models.User{ID: 1, Role: rbac.RoleManagement},
			guard:  RequirePermission(rbac.PermUsersWrite),
			status: fiber.StatusOK,
		},
		{
			name:   "denied",
			user:   &models.User{ID: 1, Role: rbac.RoleDevOps},
			guard:  RequirePermission(rbac.PermUsersRead),
			status: fiber.StatusForbidden,
		},
		{
			name:   "any granted",
			user:   &models.User{ID: 1, Role: rbac.RoleQA},
			guard:  RequireAnyPermission(rbac.PermAlertsRead, rbac.PermSettingsRead),
			status: fiber.StatusOK,
		},
		{
			name:   "any denied",
			user:   &models.User{ID: 1, Role: rbac.RoleOther},
			guard:  RequireAnyPermission(rbac.PermAlertsRead, rbac.PermSettingsRead),
			status: fiber.StatusForbidden,
		},
		{
			name:   "all granted",
			user:   &models.User{ID: 1, Role: rbac.RoleDevOps},
			guard:  RequireAllPermissions(rbac.PermAlertsRead, rbac.PermAlertsWrite),
			status: fiber.StatusOK,
		},
		{
			name:   "all denied",
			user:   &models.User{ID: 1, Role: rbac.RoleQA},
			guard:  RequireAllPermissions(rbac.PermSettingsRead, rbac.PermSettingsWrite),
			status: fiber.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newGuardedApp(tt.user, tt.guard).Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == fiber.StatusForbidden {
				var body api.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, DetailNotEnoughPermissions, body.Detail)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(BearerToken(c))
	})

	for header, want := range map[string]string{
		"":              "",
		"Bearer abc":    "abc",
		"bearer abc":    "abc",
		"Basic abc":     "",
		"Bearer":        "",
		"Bearer  abc  ": "abc",
	} {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}

		resp, err := app.Test(req)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body), header)
	}
}
