package adminapi

import (
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/orders"
	"github.com/openretail/shopd/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders", createOrder)
	webserver.ApiPUT("/orders/:id", updateOrder)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

// orderWindow parses optional from/to filters. dateparse accepts most
// human date formats, so the UI can send whatever its picker produces.
func orderWindow(c echo.Context) (from, to time.Time, err error) {
	if v := c.QueryParam("from"); v != "" {
		from, err = dateparse.ParseAny(v)
		if err != nil {
			return from, to, err
		}
	}
	if v := c.QueryParam("to"); v != "" {
		to, err = dateparse.ParseAny(v)
		if err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}

func filterWindow(views []orders.OrderView, from, to time.Time) []orders.OrderView {
	if from.IsZero() && to.IsZero() {
		return views
	}
	out := make([]orders.OrderView, 0, len(views))
	for _, v := range views {
		if !from.IsZero() && v.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && v.CreatedAt.After(to) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func listOrders(c echo.Context) error {
	from, to, err := orderWindow(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", err.Error())
	}
	page, perPage := parsePagination(c)
	views, err := svc.Orders.List(c.Request().Context(), webserver.CurrentPrincipal(c))
	if err != nil {
		return respondErr(c, err)
	}
	return paged(c, filterWindow(views, from, to), page, perPage)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid order id")
	}
	view, err := svc.Orders.Get(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, view)
}

func createOrder(c echo.Context) error {
	var proposal orders.OrderProposal
	if err := c.Bind(&proposal); err != nil {
		return err
	}
	if err := c.Validate(&proposal); err != nil {
		return err
	}
	view, err := svc.Orders.Create(c.Request().Context(), webserver.CurrentPrincipal(c), proposal)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, view)
}

func updateOrder(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid order id")
	}
	var rev orders.OrderRevision
	if err := c.Bind(&rev); err != nil {
		return err
	}
	rev.OrderID = id
	if err := c.Validate(&rev); err != nil {
		return err
	}
	if err := svc.Orders.Update(c.Request().Context(), webserver.CurrentPrincipal(c), rev); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid order id")
	}
	if err := svc.Orders.Delete(c.Request().Context(), webserver.CurrentPrincipal(c), id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}
