package handlers

import "github.com/gofiber/fiber/v2"

// Liveness only; no upstream is contacted.
func HealthHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "OK",
			"message": "Student ID Looker API is running",
		})
	}
}
