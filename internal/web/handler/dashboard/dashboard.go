// Package dashboard serves the navigation of the dashboard: the menu the
// caller may reach, route checks and the caller's permission list.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/web/handler"
	authmiddleware "github.com/HealthDash/HealthDash/internal/web/middleware/auth"
	"github.com/HealthDash/HealthDash/internal/web/navigation"
)

const (
	// NavigationPath lists the caller's menu.
	NavigationPath = "/navigation"

	// CheckPath evaluates the guard for the route given in the path query.
	CheckPath = NavigationPath + "/check"

	// PermissionsPath lists the caller's permissions.
	PermissionsPath = "/permissions"
)

// MenuResponse is returned by GET /navigation.
type MenuResponse struct {
	Title string                `json:"title"`
	Menu  []navigation.MenuItem `json:"menu"`
}

// CheckResponse is returned by GET /navigation/check.
type CheckResponse struct {
	Route    navigation.Route    `json:"route"`
	Decision navigation.Decision `json:"decision"`
	Context  *navigation.Context `json:"context"`
}

// Service is the dashboard handler service.
type Service struct {
	cfg *config.Config
}

// Init registers the routes on router.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error {
	if router == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg

	bearer := authmiddleware.New(authService)

	router.Get(NavigationPath, bearer, s.Menu)
	router.Get(CheckPath, bearer, auth.RequireAnyPermission(guarded()...), s.Check)
	router.Get(PermissionsPath, bearer, s.Permissions)

	return nil
}

// Menu returns the routes the caller may reach.
func (s *Service) Menu(c *fiber.Ctx) error {
	return c.JSON(MenuResponse{
		Title: s.cfg.Title,
		Menu:  navigation.Menu(viewer(c)),
	})
}

// Check evaluates the route guard for ?path=.
func (s *Service) Check(c *fiber.Ctx) error {
	route, ok := navigation.Lookup(c.Query("path"))
	if !ok {
		return handler.Error(c, fiber.StatusNotFound, "Unknown route")
	}

	return c.JSON(CheckResponse{
		Route:    route,
		Decision: navigation.Evaluate(viewer(c), false, route.RouteRule),
		Context:  route.Context(),
	})
}

// Permissions returns the caller's role and its permissions.
func (s *Service) Permissions(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)

	return c.JSON(api.PermissionsResponse{
		Role:        user.Role,
		Permissions: auth.PermissionsOf(user).Sorted(),
	})
}

// guarded lists the distinct permissions the route table requires. Callers
// holding none of them have no route to check.
func guarded() []rbac.Permission {
	var (
		out  []rbac.Permission
		seen = map[rbac.Permission]bool{}
	)

	for _, route := range navigation.Routes() {
		if p := route.RequiredPermission; p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	return out
}

func viewer(c *fiber.Ctx) navigation.Viewer {
	user := auth.CurrentUser(c)
	if user == nil {
		return nil
	}

	return navigation.Principal{Role: user.Role}
}
