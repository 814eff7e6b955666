package routes

import (
	"log/slog"

	"github.com/DSACMS/student-lookup-service/api/handlers"
	"github.com/DSACMS/student-lookup-service/api/middleware"
	"github.com/DSACMS/student-lookup-service/pkg/circuitbreaker"
	"github.com/DSACMS/student-lookup-service/pkg/lookup"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Lookup lookup.Service
	Redis  *redis.Client
	Logger *slog.Logger
	// Runs before every /api route when set.
	Auth fiber.Handler
	// Zero value means circuitbreaker.DefaultOptions.
	Breaker circuitbreaker.Options
}

func RegisterRoutes(app fiber.Router, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app.Get("/health", handlers.HealthHandler())
	StatusRouter(app, deps.Redis)

	api := app.Group("/api")
	if deps.Auth != nil {
		api.Use(deps.Auth)
	}

	withCB := middleware.WithCircuitBreaker(func(name string) circuitbreaker.Breaker {
		return circuitbreaker.NewRedisBreaker(deps.Redis, name, deps.Breaker, logger)
	})

	api.Post("/student/search", withCB(handlers.SearchStudentHandler(deps.Lookup, logger)))
	api.Get("/students", withCB(handlers.ListStudentsHandler(deps.Lookup, logger)))
}
