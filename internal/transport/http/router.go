package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/plantpedia/plantpedia/internal/auth"
	"github.com/plantpedia/plantpedia/internal/handlers"
	"github.com/plantpedia/plantpedia/internal/jwtmiddleware"
	"github.com/plantpedia/plantpedia/internal/middleware/jwtcookie"
	"github.com/plantpedia/plantpedia/internal/service/token"
)

type Deps struct {
	DB            *gorm.DB
	Tokens        *token.TokenService
	CookieName    string
	JWTSecret     []byte
	AuthHandler   *handlers.AuthHandler
	PlantHandler  *handlers.PlantHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	// The cookie gate runs on every route; it only populates identity and
	// never rejects.
	e.Use(jwtcookie.Middleware(jwtcookie.Config{CookieName: d.CookieName, Tokens: d.Tokens}))

	authGroup := e.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/logout", d.AuthHandler.Logout)
	authGroup.POST("/register", d.AuthHandler.Register)

	admin := e.Group("/admin", auth.RequireLoginMiddleware)
	admin.GET("/dashboard", d.AuthHandler.Dashboard)
	admin.POST("/plants", d.PlantHandler.CreatePlant)
	admin.PATCH("/plants/:id", d.PlantHandler.PatchPlant)
	admin.DELETE("/plants/:id", d.PlantHandler.DeletePlant)

	v1 := e.Group("/api/v1")
	v1.GET("/plants", d.PlantHandler.GetPlants)
	v1.GET("/plants/:id", d.PlantHandler.GetPlant)
	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	// Bearer-token surface for API clients; identity lands on the same
	// context key the resolver checks first.
	api := v1.Group("/me", jwtmiddleware.Bearer(d.JWTSecret))
	api.GET("", d.AuthHandler.Dashboard)
}
