package handlers

import (
	"github.com/DSACMS/student-lookup-service/pkg/lookup"
	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every /api response.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *lookup.Pagination `json:"pagination,omitempty"`
	Error      any                `json:"error,omitempty"`
}

func fail(c *fiber.Ctx, status int, message string, detail any) error {
	return c.Status(status).JSON(Envelope{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
