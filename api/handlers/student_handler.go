package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/DSACMS/student-lookup-service/pkg/crm"
	"github.com/DSACMS/student-lookup-service/pkg/lookup"
	"github.com/gofiber/fiber/v2"
)

const (
	msgStudentIDRequired = "Student ID is required"
	msgInvalidBody       = "Invalid request body"
	msgStudentFound      = "Student found"
	msgStudentNotFound   = "Student not found with the provided ID"
	msgSearchFailed      = "Error searching for student"
	msgInvalidPage       = "Invalid pagination parameters"
	msgListFailed        = "Error fetching students"
)

// SearchRequest is accepted as JSON or as a urlencoded form.
type SearchRequest struct {
	StudentID string `json:"studentId" form:"studentId"`
}

func SearchStudentHandler(svc lookup.Service, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("handler", "search_student"))

	return func(c *fiber.Ctx) error {
		var req SearchRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fail(c, fiber.StatusBadRequest, msgInvalidBody, nil)
			}
		}

		record, err := svc.SearchByID(c.UserContext(), req.StudentID)
		switch {
		case err == nil:
			return c.JSON(Envelope{
				Success: true,
				Message: msgStudentFound,
				Data:    record,
			})
		case errors.Is(err, lookup.ErrInvalidInput):
			return fail(c, fiber.StatusBadRequest, msgStudentIDRequired, nil)
		case errors.Is(err, lookup.ErrNotFound):
			return fail(c, fiber.StatusNotFound, msgStudentNotFound, nil)
		default:
			logger.ErrorContext(c.UserContext(), "search failed", slog.Any("err", err))
			return fail(c, fiber.StatusInternalServerError, msgSearchFailed, crm.DetailOf(err))
		}
	}
}

func ListStudentsHandler(svc lookup.Service, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("handler", "list_students"))

	return func(c *fiber.Ctx) error {
		page, err := intQuery(c, "page", lookup.DefaultPage)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, msgInvalidPage, err.Error())
		}
		limit, err := intQuery(c, "limit", lookup.DefaultLimit)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, msgInvalidPage, err.Error())
		}

		result, err := svc.ListStudents(c.UserContext(), lookup.PageRequest{Page: page, Limit: limit})
		switch {
		case err == nil:
			students := result.Students
			if students == nil {
				students = []lookup.StudentSummary{}
			}
			return c.JSON(Envelope{
				Success:    true,
				Data:       students,
				Pagination: &result.Pagination,
			})
		case errors.Is(err, lookup.ErrInvalidInput):
			return fail(c, fiber.StatusBadRequest, msgInvalidPage, strings.TrimPrefix(err.Error(), lookup.ErrInvalidInput.Error()+": "))
		default:
			logger.ErrorContext(c.UserContext(), "list failed", slog.Any("err", err))
			return fail(c, fiber.StatusInternalServerError, msgListFailed, crm.DetailOf(err))
		}
	}
}

// intQuery reads a base-10 integer query parameter. Absent or empty values
// take def.
func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
