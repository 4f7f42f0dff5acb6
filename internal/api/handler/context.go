package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Context keys populated by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxName   = "name"
	CtxToken  = "token"
)

// ctxUserID extracts the authenticated caller's id injected by the auth
// middleware. Its presence proves the middleware ran.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(CtxUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated")
	}
	return id, nil
}

// bearerToken pulls the raw credential out of the Authorization header for
// the endpoints that handle the token themselves (refresh accepts expired
// tokens, so it cannot sit behind the verifying middleware).
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
