package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/web/handler/handlertest"
	"github.com/HealthDash/HealthDash/internal/web/navigation"
)

func paths(items []navigation.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Path)
	}

	return out
}

func TestMenu(t *testing.T) {
	env := handlertest.New(t).Init(&Service{})
	env.Seed("admin", rbac.RoleManagement)
	env.Seed("olly", rbac.RoleOther)

	tests := []struct {
		username string
		want     []string
	}{
		{
			username: "admin",
			want:     []string{"/dashboard", "/system-health", "/performance", "/alerts", "/users", "/settings", "/profile"},
		},
		{
			username: "olly",
			want:     []string{"/dashboard", "/system-health", "/profile"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			resp := env.Do(fiber.MethodGet, "/api/v1"+NavigationPath, env.Login(tt.username).AccessToken, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var body MenuResponse
			env.Decode(resp, &body)
			assert.Equal(t, "HealthDash", body.Title)
			assert.Equal(t, tt.want, paths(body.Menu))
		})
	}

	resp := env.Do(fiber.MethodGet, "/api/v1"+NavigationPath, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCheck(t *testing.T) {
	env := handlertest.New(t).Init(&Service{})
	env.Seed("dora", rbac.RoleDevOps)
	token := env.Login("dora").AccessToken

	resp := env.Do(fiber.MethodGet, "/api/v1"+CheckPath+"?path=/users", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var raw map[string]json.RawMessage
	env.Decode(resp, &raw)
	assert.JSONEq(t, `{"state":"forbidden","redirect":"/dashboard"}`, string(raw["decision"]))

	resp = env.Do(fiber.MethodGet, "/api/v1"+CheckPath+"?path=/alerts", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	env.Decode(resp, &raw)
	assert.JSONEq(t, `{"state":"allowed"}`, string(raw["decision"]))

	resp = env.Do(fiber.MethodGet, "/api/v1"+CheckPath+"?path=/nowhere", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCheckRequiresRoutePermission(t *testing.T) {
	env := handlertest.New(t).Init(&Service{})
	ghost := env.Seed("ghost", rbac.RoleOther)
	token := env.Login("ghost").AccessToken

	// a role outside the table holds none of the route permissions
	require.NoError(t, env.DB.Model(ghost).Update("role", "ghost").Error)

	resp := env.Do(fiber.MethodGet, "/api/v1"+CheckPath+"?path=/dashboard", token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.Do(fiber.MethodGet, "/api/v1"+NavigationPath, token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGuarded(t *testing.T) {
	perms := guarded()

	assert.Contains(t, perms, rbac.PermDashboardRead)
	assert.Contains(t, perms, rbac.PermUsersRead)
	assert.Len(t, perms, len(rbac.NewPermissionSet(perms...).Sorted()))
}

func TestPermissions(t *testing.T) {
	env := handlertest.New(t).Init(&Service{})
	env.Seed("quinn", rbac.RoleQA)

	resp := env.Do(fiber.MethodGet, "/api/v1"+PermissionsPath, env.Login("quinn").AccessToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body api.PermissionsResponse
	env.Decode(resp, &body)
	assert.Equal(t, rbac.RoleQA, body.Role)
	assert.Equal(t, rbac.PermissionsFor(rbac.RoleQA).Sorted(), body.Permissions)
}
