// Package auth resolves the caller's identity for a request. Three sources
// are consulted in fixed priority order: claims placed by bearer-token
// verification, request slots populated by the JWT cookie gate, and the
// legacy session. The first source that answers wins; later sources are
// never allowed to override an earlier one.
package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/plantpedia/plantpedia/internal/models"
	"github.com/plantpedia/plantpedia/internal/service/token"
	"github.com/plantpedia/plantpedia/internal/session"
)

const (
	// BearerContextKey is where echo-jwt stores the parsed bearer token.
	BearerContextKey = "user"
	// UserIDContextKey and UsernameContextKey are the request slots filled
	// by the JWT cookie gate.
	UserIDContextKey   = "userID"
	UsernameContextKey = "username"

	LoginPath      = "/auth/login"
	returnURLParam = "returnUrl"
)

// Provider is one identity source. Each accessor reports whether the
// source had an answer for that attribute.
type Provider interface {
	UserID(c echo.Context) (uint, bool)
	Username(c echo.Context) (string, bool)
}

// providers in priority order. Claims from verified tokens always beat the
// gate's slots, which beat the legacy session.
var providers = []Provider{claimsProvider{}, slotProvider{}, sessionProvider{}}

type claimsProvider struct{}

func (claimsProvider) claims(c echo.Context) *token.Claims {
	switch v := c.Get(BearerContextKey).(type) {
	case *jwt.Token:
		if claims, ok := v.Claims.(*token.Claims); ok {
			return claims
		}
	case *token.Claims:
		return v
	}
	return nil
}

func (p claimsProvider) UserID(c echo.Context) (uint, bool) {
	if claims := p.claims(c); claims != nil && claims.UserID != 0 {
		return claims.UserID, true
	}
	return 0, false
}

func (p claimsProvider) Username(c echo.Context) (string, bool) {
	if claims := p.claims(c); claims != nil && claims.Username != "" {
		return claims.Username, true
	}
	return "", false
}

type slotProvider struct{}

func (slotProvider) UserID(c echo.Context) (uint, bool) {
	if id, ok := c.Get(UserIDContextKey).(uint); ok && id != 0 {
		return id, true
	}
	return 0, false
}

func (slotProvider) Username(c echo.Context) (string, bool) {
	if name, ok := c.Get(UsernameContextKey).(string); ok && name != "" {
		return name, true
	}
	return "", false
}

type sessionProvider struct{}

func (sessionProvider) UserID(c echo.Context) (uint, bool) {
	return session.UserID(c)
}

func (sessionProvider) Username(c echo.Context) (string, bool) {
	return session.Username(c)
}

func CurrentUserID(c echo.Context) (uint, bool) {
	for _, p := range providers {
		if id, ok := p.UserID(c); ok {
			return id, true
		}
	}
	return 0, false
}

func CurrentUsername(c echo.Context) (string, bool) {
	for _, p := range providers {
		if name, ok := p.Username(c); ok {
			return name, true
		}
	}
	return "", false
}

func IsAuthenticated(c echo.Context) bool {
	_, ok := CurrentUserID(c)
	return ok
}

// UserLookup is the user-store collaborator needed by CurrentUser.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.UserAccount, error)
}

// CurrentUser resolves the caller's id and fetches the full account record.
// Returns nil when unauthenticated or when the lookup fails; lookup errors
// never propagate past this boundary.
func CurrentUser(c echo.Context, lookup UserLookup) *models.UserAccount {
	if lookup == nil {
		return nil
	}
	id, ok := CurrentUserID(c)
	if !ok {
		return nil
	}
	user, err := lookup.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil
	}
	return user
}

// RequireLoginMiddleware guards a route group with RequireLogin.
func RequireLoginMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if RequireLogin(c) {
			return nil
		}
		return next(c)
	}
}

// RequireLogin redirects unauthenticated callers to the login page,
// carrying the current URL as an escaped returnUrl. It reports true when
// the redirect was issued, meaning the handler must stop.
func RequireLogin(c echo.Context) bool {
	if IsAuthenticated(c) {
		return false
	}
	loginURL := LoginPath
	if target := c.Request().RequestURI; target != "" {
		loginURL += "?" + returnURLParam + "=" + url.QueryEscape(target)
	}
	_ = c.Redirect(http.StatusFound, loginURL)
	return true
}
