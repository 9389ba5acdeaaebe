package jwtmiddleware

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/plantpedia/plantpedia/internal/auth"
	"github.com/plantpedia/plantpedia/internal/service/token"
)

// Bearer validates Authorization-header tokens on API routes and stores the
// parsed token under the context key the identity resolver reads first.
func Bearer(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		SigningKey:    secret,
		ContextKey:    auth.BearerContextKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(token.Claims)
		},
	})
}
