package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/customers"
	"github.com/openretail/shopd/internal/webserver"
)

func registerCustomerRoutes() {
	webserver.ApiGET("/customers", listCustomers)
	webserver.ApiGET("/customers/:id", getCustomer)
	webserver.ApiGET("/customers/:id/orders", listCustomerOrders)
	webserver.ApiPOST("/customers", createCustomer)
	webserver.ApiPUT("/customers/:id", updateCustomer)
	webserver.ApiDELETE("/customers/:id", deleteCustomer)
}

func listCustomers(c echo.Context) error {
	who := webserver.CurrentPrincipal(c)
	ctx := c.Request().Context()
	page, perPage := parsePagination(c)

	if q := searchKeyword(c); q != "" {
		rows, err := svc.Customers.Search(ctx, who, q)
		if err != nil {
			return respondErr(c, err)
		}
		return paged(c, rows, page, perPage)
	}
	rows, err := svc.Customers.List(ctx, who)
	if err != nil {
		return respondErr(c, err)
	}
	return paged(c, rows, page, perPage)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid customer id")
	}
	row, err := svc.Customers.Get(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func listCustomerOrders(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid customer id")
	}
	views, err := svc.Orders.ListByCustomer(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, views)
}

func createCustomer(c echo.Context) error {
	var form customers.CustomerForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	row, err := svc.Customers.Create(c.Request().Context(), webserver.CurrentPrincipal(c), form)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func updateCustomer(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid customer id")
	}
	var form customers.CustomerForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	if err := svc.Customers.Update(c.Request().Context(), webserver.CurrentPrincipal(c), id, form); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}

func deleteCustomer(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid customer id")
	}
	if err := svc.Customers.Delete(c.Request().Context(), webserver.CurrentPrincipal(c), id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}
