package lookup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DSACMS/student-lookup-service/pkg/crm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	outcomePrimary  = "primary"
	outcomeFallback = "fallback"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// SearchByID finds the student whose custom field equals studentID exactly.
// A scoped search runs first; only when it has no exact match is the full
// location listing scanned. Failures of that second call are logged and
// treated as "no match".
func (s *service) SearchByID(ctx context.Context, studentID string) (StudentRecord, error) {
	if studentID == "" {
		return StudentRecord{}, fmt.Errorf("%w: student id is required", ErrInvalidInput)
	}

	ctx, span := s.tracer.Start(ctx, "lookup.SearchByID")
	defer span.End()

	log := s.logger.With(slog.String("student_id", studentID))

	primary, err := s.contacts.ListContacts(ctx, crm.ContactsQuery{
		Query:       studentID,
		CustomField: s.field,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "primary search failed")
		s.recordSearch(ctx, outcomeError)
		log.ErrorContext(ctx, "student search failed", slog.Any("err", err), slog.Any("detail", crm.DetailOf(err)))
		return StudentRecord{}, fmt.Errorf("primary search: %w", err)
	}

	if contact, ok := s.firstMatch(primary, studentID); ok {
		s.found(ctx, span, outcomePrimary)
		return toStudentRecord(contact, studentID), nil
	}

	span.AddEvent("primary search had no exact match")

	fallback, err := s.contacts.ListContacts(ctx, crm.ContactsQuery{})
	if err != nil {
		span.AddEvent("fallback search failed", trace.WithAttributes(attribute.String("error", err.Error())))
		log.WarnContext(ctx, "fallback student search failed", slog.Any("err", err), slog.Any("detail", crm.DetailOf(err)))
	} else if contact, ok := s.firstMatch(fallback, studentID); ok {
		s.found(ctx, span, outcomeFallback)
		return toStudentRecord(contact, studentID), nil
	}

	span.SetAttributes(attribute.String("lookup.outcome", outcomeNotFound))
	s.recordSearch(ctx, outcomeNotFound)
	log.InfoContext(ctx, "student not found")

	return StudentRecord{}, ErrNotFound
}

func (s *service) found(ctx context.Context, span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("lookup.outcome", outcome))
	s.recordSearch(ctx, outcome)
}
