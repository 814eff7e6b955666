package crm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DSACMS/student-lookup-service/pkg/core"
	"github.com/DSACMS/student-lookup-service/pkg/oauthLocal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	applicationJSON = "application/json"
	versionHeader   = "Version"
	contactsPath    = "contacts/"

	defaultTimeout = 10 * time.Second
)

type Client interface {
	ListContacts(ctx context.Context, q ContactsQuery) (ContactsResponse, error)
}

type HTTPTransport interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	// Override for testing the HTTP client. When set it is used as-is and
	// must attach its own credentials.
	HTTPClient HTTPTransport
	// Structured logger using slog package
	Logger *slog.Logger
	// Per-call timeout; falls back to cfg.Timeout, then 10s.
	Timeout time.Duration
}

type client struct {
	cfg         *core.CRMConfig
	contactsURL string
	http        HTTPTransport
	logger      *slog.Logger
	tracer      trace.Tracer
	timeout     time.Duration
}

func New(cfg *core.CRMConfig, opts Options) (Client, error) {
	if cfg == nil {
		return nil, errors.New("cfg is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("cfg.BaseURL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("cfg.APIKey is required")
	}
	if strings.TrimSpace(cfg.LocationID) == "" {
		return nil, errors.New("cfg.LocationID is required")
	}

	contactsURL, err := url.JoinPath(cfg.BaseURL, contactsPath)
	if err != nil {
		return nil, errors.New("cfg.BaseURL is not a valid URL")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("component", "crm"),
		slog.String("location_id", cfg.LocationID),
	)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = oauthLocal.StaticBearerClient(context.Background(), cfg.APIKey, nil)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.Timeout
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &client{
		cfg:         cfg,
		contactsURL: contactsURL,
		http:        httpClient,
		logger:      logger,
		tracer:      otel.Tracer("github.com/DSACMS/student-lookup-service/pkg/crm"),
		timeout:     timeout,
	}, nil
}
