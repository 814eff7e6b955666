package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DSACMS/student-lookup-service/pkg/crm"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ListStudents returns one CRM page of contacts that carry a student id.
// Pagination.Total counts the students in this page only.
func (s *service) ListStudents(ctx context.Context, req PageRequest) (StudentPage, error) {
	if err := s.validate.Struct(req); err != nil {
		return StudentPage{}, pageError(err)
	}

	ctx, span := s.tracer.Start(ctx, "lookup.ListStudents")
	defer span.End()

	offset := (req.Page - 1) * req.Limit

	resp, err := s.contacts.ListContacts(ctx, crm.ContactsQuery{
		Limit:      req.Limit,
		StartAfter: offset,
		Paginate:   true,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list contacts failed")
		s.logger.ErrorContext(ctx, "list students failed", slog.Any("err", err), slog.Any("detail", crm.DetailOf(err)))
		return StudentPage{}, fmt.Errorf("list contacts: %w", err)
	}

	contacts, ok := resp.Contacts.Get()
	if !ok {
		err := &crm.UpstreamError{
			Detail: "crm response did not include a contacts list",
			Err:    crm.ErrUnexpectedResponse,
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "list contacts failed")
		s.logger.ErrorContext(ctx, "list students failed", slog.Any("err", err))
		return StudentPage{}, err
	}

	students := make([]StudentSummary, 0, len(contacts))
	for _, c := range contacts {
		id, ok := c.CustomString(s.field).Get()
		if !ok || id == "" {
			continue
		}
		students = append(students, toStudentSummary(c, id))
	}

	span.SetAttributes(
		attribute.Int("lookup.contacts", len(contacts)),
		attribute.Int("lookup.students", len(students)),
	)

	return StudentPage{
		Students: students,
		Pagination: Pagination{
			Page:  req.Page,
			Limit: req.Limit,
			Total: len(students),
		},
	}, nil
}

func pageError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.ActualTag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, ", "))
}
