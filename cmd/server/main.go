package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/plantpedia/plantpedia/internal/config"
	"github.com/plantpedia/plantpedia/internal/es"
	"github.com/plantpedia/plantpedia/internal/events"
	"github.com/plantpedia/plantpedia/internal/handlers"
	"github.com/plantpedia/plantpedia/internal/logging"
	"github.com/plantpedia/plantpedia/internal/repository"
	"github.com/plantpedia/plantpedia/internal/service/token"
	httpserver "github.com/plantpedia/plantpedia/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		// Covers the missing-secret case: refuse to start rather than
		// serve unverifiable tokens.
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	tokens, err := token.New(configuration.JWT)
	if err != nil {
		log.Fatal(err)
	}

	var prod *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "plants"}
	}

	users := &repository.UserRepository{DB: db}
	plants := &repository.PlantRepository{DB: db}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(configuration.SESSION_SECRET))))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:         db,
		Tokens:     tokens,
		CookieName: configuration.JWT.CookieName,
		JWTSecret:  []byte(configuration.JWT.Secret),
		AuthHandler: &handlers.AuthHandler{
			Users:      users,
			Tokens:     tokens,
			CookieName: configuration.JWT.CookieName,
			Producer:   prod,
		},
		PlantHandler:  &handlers.PlantHandler{Plants: plants, Producer: prod},
		SearchHandler: searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
