package routes

import (
	"github.com/DSACMS/student-lookup-service/api/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// StatusRouter mounts the readiness probe. It is not behind the breaker so
// that a Redis outage shows up here instead of being masked.
func StatusRouter(app fiber.Router, rdb *redis.Client) {
	app.Get("/status", handlers.GetRDBStatus(rdb))
}
