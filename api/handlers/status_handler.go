package handlers

import (
	"context"
	"time"

	redisLocal "github.com/DSACMS/student-lookup-service/pkg/redis"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const statusTimeout = 2 * time.Second

// Build a handler that returns a 2** status when the breaker store is
// reachable.
func GetRDBStatus(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), statusTimeout)
		defer cancel()

		if err := redisLocal.Ping(ctx, rdb); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusOK)
	}
}
