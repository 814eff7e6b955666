package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DSACMS/student-lookup-service/pkg/circuitbreaker"
	"github.com/DSACMS/student-lookup-service/pkg/lookup"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	err   error
	calls int
}

func (s *stubService) SearchByID(_ context.Context, id string) (lookup.StudentRecord, error) {
	s.calls++
	return lookup.StudentRecord{ID: "c1", StudentID: id, Tags: []string{}}, s.err
}

func (s *stubService) ListStudents(_ context.Context, req lookup.PageRequest) (lookup.StudentPage, error) {
	s.calls++
	return lookup.StudentPage{Pagination: lookup.Pagination{Page: req.Page, Limit: req.Limit}}, s.err
}

func newTestRouter(t *testing.T, deps Dependencies) *fiber.App {
	t.Helper()

	rdb, _ := newTestRedis(t)
	deps.Redis = rdb
	deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	app := fiber.New()
	RegisterRoutes(app, deps)
	return app
}

func TestRegisterRoutes_Mounts(t *testing.T) {
	app := newTestRouter(t, Dependencies{Lookup: &stubService{}})

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/health", "", fiber.StatusOK},
		{http.MethodGet, "/status", "", fiber.StatusOK},
		{http.MethodPost, "/api/student/search", `{"studentId":"S1"}`, fiber.StatusOK},
		{http.MethodGet, "/api/students", "", fiber.StatusOK},
		{http.MethodGet, "/api/student/search", "", fiber.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRegisterRoutes_AuthGuardsAPIOnly(t *testing.T) {
	svc := &stubService{}
	app := newTestRouter(t, Dependencies{
		Lookup: svc,
		Auth:   func(c *fiber.Ctx) error { return fiber.ErrUnauthorized },
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/students", http.NoBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, svc.calls)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", http.NoBody), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterRoutes_BreakerOpensOnUpstreamFailures(t *testing.T) {
	svc := &stubService{err: context.DeadlineExceeded}
	app := newTestRouter(t, Dependencies{
		Lookup: svc,
		Breaker: circuitbreaker.Options{
			FailureThreshold: 2,
			OpenCoolDown:     time.Minute,
		},
	})

	get := func() (int, string) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/students", http.NoBody), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	for range 2 {
		status, body := get()
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.JSONEq(t, `{"success":false,"message":"Error fetching students","error":"context deadline exceeded"}`, body)
	}

	status, body := get()
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"success":false,"message":"Service temporarily unavailable","error":"CIRCUIT_OPEN"}`, body)
	assert.Equal(t, 2, svc.calls)
}
