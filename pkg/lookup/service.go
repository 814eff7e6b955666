// Package lookup maps student lookups onto CRM contact queries.
//
// The CRM is the only source of truth: every call goes upstream and nothing
// is kept between requests.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DSACMS/student-lookup-service/pkg/crm"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	scopeName             = "github.com/DSACMS/student-lookup-service/pkg/lookup"
	defaultStudentIDField = "student_id_"

	DefaultPage  = 1
	DefaultLimit = 20
)

type Service interface {
	SearchByID(ctx context.Context, studentID string) (StudentRecord, error)
	ListStudents(ctx context.Context, req PageRequest) (StudentPage, error)
}

type Options struct {
	// Structured logger using slog package
	Logger *slog.Logger
	// Custom field holding the student identifier. Defaults to "student_id_".
	StudentIDField string
}

type service struct {
	contacts crm.Client
	field    string
	logger   *slog.Logger
	validate *validator.Validate
	tracer   trace.Tracer
	searches metric.Int64Counter
}

func New(contacts crm.Client, opts Options) (Service, error) {
	if contacts == nil {
		return nil, errors.New("crm client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "lookup"))

	field := strings.TrimSpace(opts.StudentIDField)
	if field == "" {
		field = defaultStudentIDField
	}

	searches, err := otel.Meter(scopeName).Int64Counter(
		"student_lookup.searches",
		metric.WithDescription("Student searches by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create searches counter: %w", err)
	}

	return &service{
		contacts: contacts,
		field:    field,
		logger:   logger,
		validate: validator.New(),
		tracer:   otel.Tracer(scopeName),
		searches: searches,
	}, nil
}

// firstMatch returns the first contact, in CRM order, whose student id field
// is exactly studentID.
func (s *service) firstMatch(resp crm.ContactsResponse, studentID string) (crm.Contact, bool) {
	contacts, _ := resp.Contacts.Get()
	for _, c := range contacts {
		if id, ok := c.CustomString(s.field).Get(); ok && id == studentID {
			return c, true
		}
	}
	return crm.Contact{}, false
}

func (s *service) recordSearch(ctx context.Context, outcome string) {
	s.searches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
