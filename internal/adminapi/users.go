package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/users"
	"github.com/openretail/shopd/internal/webserver"
)

func registerUserRoutes() {
	webserver.ApiGET("/users", listUsers)
	webserver.ApiGET("/users/:id", getUser)
	webserver.ApiPOST("/users", createUser)
	webserver.ApiPUT("/users/:id", updateUser)
	webserver.ApiDELETE("/users/:id", deleteUser)
}

func listUsers(c echo.Context) error {
	page, perPage := parsePagination(c)
	rows, err := svc.Users.List(c.Request().Context(), webserver.CurrentPrincipal(c))
	if err != nil {
		return respondErr(c, err)
	}
	return paged(c, rows, page, perPage)
}

func getUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}
	row, err := svc.Users.Get(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func createUser(c echo.Context) error {
	var form users.UserForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	row, err := svc.Users.Create(c.Request().Context(), webserver.CurrentPrincipal(c), form)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func updateUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}
	var form users.UserForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	if err := svc.Users.Update(c.Request().Context(), webserver.CurrentPrincipal(c), id, form); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}

func deleteUser(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
	}
	if err := svc.Users.Delete(c.Request().Context(), webserver.CurrentPrincipal(c), id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}
