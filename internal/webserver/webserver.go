package webserver

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/openretail/shopd/config"
	"github.com/openretail/shopd/internal/auth"
)

var server *WebServer

// WebServer wraps the echo instance and the /api route group. Handlers are
// registered through the package-level Api* helpers.
type WebServer struct {
	root  *echo.Echo
	api   *echo.Group
	cfg   *config.AppConfig
	authn *auth.Authenticator
}

// Init builds the package server. Must be called before any route
// registration.
func Init(cfg *config.AppConfig, authn *auth.Authenticator) *WebServer {
	server = &WebServer{cfg: cfg, authn: authn}
	server.initRouter()
	return server
}

// Instance returns the package server, for tests that drive requests
// directly through echo.
func Instance() *WebServer {
	return server
}

func (s *WebServer) initRouter() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = &jsonSerializer{}
	e.Validator = &formValidator{validate: validator.New()}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.L().Error("panic in handler",
				zap.String("path", c.Path()),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(s.cfg.Web.Secret))))

	s.root = e
	s.api = e.Group("/api")
	s.api.Use(s.principalMiddleware())
}

// Start runs the http listener until it fails or is shut down.
func (s *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.L().Info("starting web server", zap.String("listen", addr))
	return s.root.Start(addr)
}

// Echo exposes the underlying instance (tests and shutdown).
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Authn exposes the token authority for login handlers.
func (s *WebServer) Authn() *auth.Authenticator {
	return s.authn
}

// ApiGET register get route handler
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

// ApiPOST register post route handler
func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

// ApiPUT register put route handler
func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, m...)
}

// ApiDELETE register delete route handler
func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

type jsonSerializer struct{}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type formValidator struct {
	validate *validator.Validate
}

func (v *formValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
