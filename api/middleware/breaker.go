package middleware

import (
	"errors"
	"sync"

	"github.com/DSACMS/student-lookup-service/pkg/circuitbreaker"
	"github.com/gofiber/fiber/v2"
)

// WithCircuitBreaker wraps handlers with a breaker per route. Breakers are
// built lazily on first use. A handler outcome counts as a failure when it
// returns a 5xx error or leaves a 5xx status on the response.
func WithCircuitBreaker(newBreaker func(name string) circuitbreaker.Breaker) func(fiber.Handler) fiber.Handler {
	var mu sync.RWMutex
	breakers := make(map[string]circuitbreaker.Breaker)

	getBreaker := func(name string) circuitbreaker.Breaker {
		mu.RLock()
		b := breakers[name]
		mu.RUnlock()
		if b != nil {
			return b
		}

		mu.Lock()
		defer mu.Unlock()
		if b = breakers[name]; b != nil {
			return b
		}

		b = newBreaker(name)
		breakers[name] = b
		return b
	}

	return func(next fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			breaker := getBreaker(breakerName(c))
			ctx := c.UserContext()

			if err := breaker.Allow(ctx); err != nil {
				code := "BREAKER_ERROR"
				if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
					code = "CIRCUIT_OPEN"
				}

				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Service temporarily unavailable",
					"error":   code,
				})
			}

			err := next(c)
			if failed(c, err) {
				breaker.OnFailure(ctx)
			} else {
				breaker.OnSuccess(ctx)
			}

			return err
		}
	}
}

func failed(c *fiber.Ctx, err error) bool {
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code >= fiber.StatusInternalServerError
		}
		return true
	}
	return c.Response().StatusCode() >= fiber.StatusInternalServerError
}

func breakerName(c *fiber.Ctx) string {
	var path string
	r := c.Route()
	if r != nil && r.Path != "" {
		path = r.Path
	} else {
		path = c.Path()
	}

	return c.Method() + " " + path
}
