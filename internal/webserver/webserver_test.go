package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/shopd/config"
	"github.com/openretail/shopd/internal/auth"
	"github.com/openretail/shopd/internal/identity"
)

func newTestServer(t *testing.T) (*WebServer, *auth.Authenticator) {
	t.Helper()
	cfg := &config.AppConfig{Web: config.WebConfig{Secret: "test-secret"}}
	authn := auth.NewAuthenticator(nil, cfg.Web.Secret, time.Hour)
	return Init(cfg, authn), authn
}

func do(s *WebServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

// A request with no credentials at all must still reach the handler: login
// itself lives under /api, and services decide what anonymous callers get.
func TestAnonymousRequestReachesHandler(t *testing.T) {
	s, _ := newTestServer(t)

	invoked := false
	ApiGET("/ping", func(c echo.Context) error {
		invoked = true
		assert.Nil(t, CurrentPrincipal(c))
		return c.JSON(http.StatusOK, map[string]string{"pong": "ok"})
	})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.True(t, invoked, "anonymous request never reached the handler")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pong")
}

func TestBearerTokenResolvesPrincipal(t *testing.T) {
	s, authn := newTestServer(t)

	token, err := authn.IssueToken(&identity.Principal{UserID: 7, Username: "alice", Role: identity.RoleStaff})
	require.NoError(t, err)

	var got *identity.Principal
	ApiGET("/who", func(c echo.Context) error {
		got = CurrentPrincipal(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/who", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := do(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, identity.RoleStaff, got.Role)
}

// A malformed token degrades to an anonymous request instead of an error
// response.
func TestGarbageTokenFallsBackToAnonymous(t *testing.T) {
	s, _ := newTestServer(t)

	invoked := false
	ApiGET("/open", func(c echo.Context) error {
		invoked = true
		assert.Nil(t, CurrentPrincipal(c))
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/open", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec := do(s, req)

	require.True(t, invoked)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Browser clients carry the token in the session cookie after login; later
// requests without a bearer header resolve the principal from there.
func TestSessionCookieResolvesPrincipal(t *testing.T) {
	s, authn := newTestServer(t)

	token, err := authn.IssueToken(&identity.Principal{UserID: 9, Username: "bob", Role: identity.RoleAdmin})
	require.NoError(t, err)

	ApiPOST("/session", func(c echo.Context) error {
		if err := StoreSession(c, token); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	var got *identity.Principal
	ApiGET("/session-who", func(c echo.Context) error {
		got = CurrentPrincipal(c)
		return c.NoContent(http.StatusOK)
	})

	login := do(s, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	require.Equal(t, http.StatusOK, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/api/session-who", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := do(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(9), got.UserID)
	assert.Equal(t, identity.RoleAdmin, got.Role)
}
