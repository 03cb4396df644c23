package navigation

import (
	"github.com/HealthDash/HealthDash/internal/rbac"
)

// Sections group routes in the menu.
const (
	SectionMonitoring = "monitoring"
	SectionAdmin      = "admin"
	SectionAccount    = "account"
)

// Route is a navigational target of the dashboard.
type Route struct {
	RouteRule

	Title   string `json:"title"`
	Section string `json:"section"`
}

// Context returns the breadcrumb context of the route.
func (r Route) Context() *Context {
	ctx := NewContext(r.Title, r.Section, r.Path).
		AddBreadcrumb("Home", DashboardPath, r.Path == DashboardPath)

	if r.Path != DashboardPath {
		ctx.AddBreadcrumb(r.Title, r.Path, true)
	}

	return ctx
}

var routes = []Route{
	{
		RouteRule: RouteRule{Path: DashboardPath, RequiredPermission: rbac.PermDashboardRead},
		Title:     "Dashboard",
		Section:   SectionMonitoring,
	},
	{
		RouteRule: RouteRule{Path: "/system-health", RequiredPermission: rbac.PermSystemHealthRead},
		Title:     "System Health",
		Section:   SectionMonitoring,
	},
	{
		RouteRule: RouteRule{Path: "/performance", RequiredPermission: rbac.PermPerformanceRead},
		Title:     "Performance",
		Section:   SectionMonitoring,
	},
	{
		RouteRule: RouteRule{Path: "/alerts", RequiredPermission: rbac.PermAlertsRead},
		Title:     "Alerts",
		Section:   SectionMonitoring,
	},
	{
		RouteRule: RouteRule{
			Path:               "/users",
			RequiredPermission: rbac.PermUsersRead,
			AllowedRoles:       []rbac.Role{rbac.RoleManagement},
		},
		Title:   "Users",
		Section: SectionAdmin,
	},
	{
		RouteRule: RouteRule{Path: "/settings", RequiredPermission: rbac.PermSettingsRead},
		Title:     "Settings",
		Section:   SectionAdmin,
	},
	{
		RouteRule: RouteRule{Path: "/profile"},
		Title:     "Profile",
		Section:   SectionAccount,
	},
}

// Routes returns the dashboard's route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)

	return out
}

// Lookup returns the route registered for path.
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}

	return Route{}, false
}

// MenuItem is a route the viewer may reach, with its breadcrumb trail.
type MenuItem struct {
	Path        string           `json:"path"`
	Title       string           `json:"title"`
	Section     string           `json:"section"`
	Breadcrumbs []BreadcrumbItem `json:"breadcrumbs"`
}

// Menu lists the routes whose guard decision is StateAllowed for viewer.
func Menu(viewer Viewer) []MenuItem {
	items := make([]MenuItem, 0, len(routes))

	for _, r := range routes {
		if !Evaluate(viewer, false, r.RouteRule).Allowed() {
			continue
		}

		items = append(items, MenuItem{
			Path:        r.Path,
			Title:       r.Title,
			Section:     r.Section,
			Breadcrumbs: r.Context().Breadcrumbs,
		})
	}

	return items
}
