package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/catalog"
	"github.com/openretail/shopd/internal/webserver"
)

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/low-stock", listLowStockProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiPUT("/products/:id/stock", adjustProductStock)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func listProducts(c echo.Context) error {
	who := webserver.CurrentPrincipal(c)
	ctx := c.Request().Context()
	page, perPage := parsePagination(c)

	if q := searchKeyword(c); q != "" {
		rows, err := svc.Catalog.SearchProducts(ctx, who, q)
		if err != nil {
			return respondErr(c, err)
		}
		return paged(c, rows, page, perPage)
	}
	rows, err := svc.Catalog.ListProducts(ctx, who)
	if err != nil {
		return respondErr(c, err)
	}
	return paged(c, rows, page, perPage)
}

func listLowStockProducts(c echo.Context) error {
	threshold := 5
	if v, err := strconv.Atoi(c.QueryParam("threshold")); err == nil && v >= 0 {
		threshold = v
	}
	rows, err := svc.Catalog.LowStock(c.Request().Context(), webserver.CurrentPrincipal(c), threshold)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, rows)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid product id")
	}
	row, err := svc.Catalog.GetProduct(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func createProduct(c echo.Context) error {
	var form catalog.ProductForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	row, err := svc.Catalog.CreateProduct(c.Request().Context(), webserver.CurrentPrincipal(c), form)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid product id")
	}
	var form catalog.ProductForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	if err := svc.Catalog.UpdateProduct(c.Request().Context(), webserver.CurrentPrincipal(c), id, form); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}

type stockAdjustPayload struct {
	Delta int `json:"delta" validate:"required"`
}

func adjustProductStock(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid product id")
	}
	var payload stockAdjustPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := svc.Catalog.AdjustStock(c.Request().Context(), webserver.CurrentPrincipal(c), id, payload.Delta); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid product id")
	}
	if err := svc.Catalog.DeleteProduct(c.Request().Context(), webserver.CurrentPrincipal(c), id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}
