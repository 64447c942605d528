package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/auth"
	"github.com/openretail/shopd/internal/catalog"
	"github.com/openretail/shopd/internal/customers"
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/orders"
	"github.com/openretail/shopd/internal/users"
)

// Services collects everything the handlers depend on.
type Services struct {
	DB        *gorm.DB
	Catalog   *catalog.Service
	Customers *customers.Service
	Users     *users.Service
	Orders    *orders.Service
	Authn     *auth.Authenticator
	Bus       EventBus.Bus
}

var svc *Services

// Init wires the handlers and registers every route group. Call after
// webserver.Init.
func Init(s *Services) {
	svc = s
	registerAuthRoutes()
	registerPermissionRoutes()
	registerCategoryRoutes()
	registerProductRoutes()
	registerCustomerRoutes()
	registerUserRoutes()
	registerOrderRoutes()
	registerExportRoutes()
	registerStatsRoutes()
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiError{Code: code, Message: message})
}

// respondErr maps service errors to HTTP statuses. Domain rejections keep
// their message; infrastructure errors are logged and hidden behind a 500.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return fail(c, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	}

	var denied domain.PermissionDeniedError
	if errors.As(err, &denied) {
		return fail(c, http.StatusForbidden, "PERMISSION_DENIED", denied.Error())
	}
	var notFound domain.NotFoundError
	if errors.As(err, &notFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", notFound.Error())
	}
	var productMissing domain.ProductNotFoundError
	if errors.As(err, &productMissing) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", productMissing.Error())
	}
	var dup domain.DuplicateKeyError
	if errors.As(err, &dup) {
		return fail(c, http.StatusConflict, "DUPLICATE", dup.Error())
	}
	if domain.IsDomainError(err) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	zap.L().Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func parseIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

// parsePagination accepts page and perPage query params with sane bounds.
func parsePagination(c echo.Context) (page, perPage int) {
	page = 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	perPage = 20
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		perPage = ps
	}
	return page, perPage
}

type pagedResult struct {
	Items   interface{} `json:"items"`
	Total   int         `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

// paged slices a fully-loaded result set in memory. Fine at this catalog's
// scale; revisit with query-level limits if tables outgrow it.
func paged[T any](c echo.Context, items []T, page, perPage int) error {
	total := len(items)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return ok(c, pagedResult{Items: items[start:end], Total: total, Page: page, PerPage: perPage})
}

func searchKeyword(c echo.Context) string {
	return strings.TrimSpace(c.QueryParam("q"))
}
