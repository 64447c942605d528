package webserver

import (
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/identity"
)

const (
	principalContextKey = "shopd_principal"
	sessionName         = "shopd_session"
	sessionTokenKey     = "token"
)

// principalMiddleware resolves the caller identity from a bearer token,
// falling back to the session cookie. Requests without either proceed
// anonymously; the service layer rejects them where it matters.
func (s *WebServer) principalMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: principalContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return s.authn.ParseToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if p := s.principalFromSession(c); p != nil {
				c.Set(principalContextKey, p)
			}
			return nil
		},
		// A swallowed error must still run the handler chain, otherwise
		// every request without a bearer token dies here.
		ContinueOnIgnoredError: true,
	})
}

func (s *WebServer) principalFromSession(c echo.Context) *identity.Principal {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil
	}
	token, ok := sess.Values[sessionTokenKey].(string)
	if !ok || token == "" {
		return nil
	}
	p, err := s.authn.ParseToken(token)
	if err != nil {
		return nil
	}
	return p
}

// CurrentPrincipal returns the resolved caller identity, nil when anonymous.
func CurrentPrincipal(c echo.Context) *identity.Principal {
	p, _ := c.Get(principalContextKey).(*identity.Principal)
	return p
}

// StoreSession persists the signed token in the session cookie so browser
// clients stay logged in without resending the bearer header.
func StoreSession(c echo.Context, token string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.HttpOnly = true
	sess.Options.Path = "/"
	sess.Values[sessionTokenKey] = token
	return sess.Save(c.Request(), c.Response())
}

// ClearSession drops the stored token.
func ClearSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionTokenKey)
	return sess.Save(c.Request(), c.Response())
}
