// Package jwtcookie carries identity from the login cookie into the
// request. The gate never blocks a request: a missing or bad token just
// leaves it unauthenticated.
package jwtcookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plantpedia/plantpedia/internal/auth"
	"github.com/plantpedia/plantpedia/internal/config"
	"github.com/plantpedia/plantpedia/internal/logging"
	"github.com/plantpedia/plantpedia/internal/service/token"
)

type Config struct {
	CookieName string
	Tokens     *token.TokenService
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = config.DefaultCookieName
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			claims, err := cfg.Tokens.Verify(cookie.Value)
			if err != nil {
				// Invalid token must never leave identity state behind.
				// Drop the cookie so the client stops resending it.
				ClearCookie(c, cfg.CookieName)
				logging.FromContext(c.Request().Context()).Warn("jwt_cookie_rejected", "error", err)
				return next(c)
			}

			if claims.UserID != 0 {
				c.Set(auth.UserIDContextKey, claims.UserID)
			}
			if claims.Username != "" {
				c.Set(auth.UsernameContextKey, claims.Username)
			}
			return next(c)
		}
	}
}

// ClearCookie expires the named cookie on the response.
func ClearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
