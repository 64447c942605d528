package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/catalog"
	"github.com/openretail/shopd/internal/webserver"
)

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiGET("/categories/:id", getCategory)
	webserver.ApiGET("/categories/:id/products", listCategoryProducts)
	webserver.ApiPOST("/categories", createCategory)
	webserver.ApiPUT("/categories/:id", updateCategory)
	webserver.ApiDELETE("/categories/:id", deleteCategory)
}

func listCategories(c echo.Context) error {
	who := webserver.CurrentPrincipal(c)
	ctx := c.Request().Context()
	page, perPage := parsePagination(c)

	if q := searchKeyword(c); q != "" {
		rows, err := svc.Catalog.SearchCategories(ctx, who, q)
		if err != nil {
			return respondErr(c, err)
		}
		return paged(c, rows, page, perPage)
	}
	rows, err := svc.Catalog.ListCategories(ctx, who)
	if err != nil {
		return respondErr(c, err)
	}
	return paged(c, rows, page, perPage)
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid category id")
	}
	row, err := svc.Catalog.GetCategory(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func listCategoryProducts(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid category id")
	}
	rows, err := svc.Catalog.ListProductsByCategory(c.Request().Context(), webserver.CurrentPrincipal(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, rows)
}

func createCategory(c echo.Context) error {
	var form catalog.CategoryForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	row, err := svc.Catalog.CreateCategory(c.Request().Context(), webserver.CurrentPrincipal(c), form)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, row)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid category id")
	}
	var form catalog.CategoryForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return err
	}
	if err := svc.Catalog.UpdateCategory(c.Request().Context(), webserver.CurrentPrincipal(c), id, form); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "invalid category id")
	}
	if err := svc.Catalog.DeleteCategory(c.Request().Context(), webserver.CurrentPrincipal(c), id); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]int64{"id": id})
}
