package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/openretail/shopd/internal/auth"
	"github.com/openretail/shopd/internal/webserver"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token      string `json:"token"`
	UserID     int64  `json:"user_id,string"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	CustomerID *int64 `json:"customer_id,string,omitempty"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/login", login)
	webserver.ApiPOST("/logout", logout)
	webserver.ApiGET("/whoami", whoami)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	p, err := svc.Authn.Login(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		return respondErr(c, err)
	}
	token, err := svc.Authn.IssueToken(p)
	if err != nil {
		return respondErr(c, err)
	}
	if err := webserver.StoreSession(c, token); err != nil {
		return respondErr(c, err)
	}
	if svc.Bus != nil {
		svc.Bus.Publish(auth.TopicLogin, p.Username, p.UserID)
	}

	return ok(c, loginResponse{
		Token:      token,
		UserID:     p.UserID,
		Username:   p.Username,
		Role:       string(p.Role),
		CustomerID: p.CustomerID,
	})
}

func logout(c echo.Context) error {
	if err := webserver.ClearSession(c); err != nil {
		return respondErr(c, err)
	}
	return ok(c, map[string]string{"status": "logged out"})
}

func whoami(c echo.Context) error {
	p := webserver.CurrentPrincipal(c)
	if p == nil {
		return ok(c, map[string]interface{}{"authenticated": false})
	}
	return ok(c, map[string]interface{}{
		"authenticated": true,
		"user_id":       p.UserID,
		"username":      p.Username,
		"role":          string(p.Role),
	})
}
