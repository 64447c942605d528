package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/authz"
	"github.com/openretail/shopd/internal/webserver"
)

type modulePermissions struct {
	CanCreate bool `json:"can_create"`
	CanUpdate bool `json:"can_update"`
	CanDelete bool `json:"can_delete"`
}

func registerPermissionRoutes() {
	webserver.ApiGET("/permissions", listPermissions)
}

// listPermissions returns the caller's action map per module so the UI can
// hide buttons the service layer would reject anyway.
func listPermissions(c echo.Context) error {
	p := webserver.CurrentPrincipal(c)
	out := make(map[string]modulePermissions, len(authz.Modules))
	for _, m := range authz.Modules {
		out[string(m)] = modulePermissions{
			CanCreate: authz.CanCreate(p, m),
			CanUpdate: authz.CanUpdate(p, m),
			CanDelete: authz.CanDelete(p, m),
		}
	}
	return ok(c, out)
}
