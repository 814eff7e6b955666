package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (c *client) ListContacts(ctx context.Context, q ContactsQuery) (ContactsResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "crm.ListContacts",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Bool("crm.query.present", q.Query != ""),
			attribute.String("crm.custom_field", q.CustomField),
			attribute.Int("crm.limit", q.Limit),
			attribute.Int("crm.start_after", q.StartAfter),
		),
	)
	defer span.End()

	out, err := c.listContacts(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "crm contacts request failed")
	}
	return out, err
}

func (c *client) listContacts(ctx context.Context, q ContactsQuery) (ContactsResponse, error) {
	endpoint := c.contactsURL + "?" + q.values(c.cfg.LocationID).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		c.logger.Error("crm contacts create request failed", slog.Any("err", err))
		return ContactsResponse{}, &UpstreamError{Detail: err.Error(), Err: fmt.Errorf("create contacts request: %w", err)}
	}

	req.Header.Set("Accept", applicationJSON)
	req.Header.Set("Content-Type", applicationJSON)
	if c.cfg.APIVersion != "" {
		req.Header.Set(versionHeader, c.cfg.APIVersion)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)

	if err != nil {
		c.logger.Error("crm contacts request failed",
			slog.Any("err", err),
			slog.Duration("latency", latency),
		)
		return ContactsResponse{}, &UpstreamError{Detail: err.Error(), Err: fmt.Errorf("contacts request: %w", err)}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ContactsResponse{}, &UpstreamError{
			StatusCode: resp.StatusCode,
			Detail:     err.Error(),
			Err:        fmt.Errorf("read contacts response: %w", err),
		}
	}

	c.logger.Debug("crm contacts response received",
		slog.Int("status", resp.StatusCode),
		slog.String("content_type", resp.Header.Get("Content-Type")),
		slog.Duration("latency", latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := bodyDetail(respBytes)

		c.logger.Error("crm contacts non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.Any("detail", detail),
		)

		return ContactsResponse{}, &UpstreamError{
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Err:        fmt.Errorf("contacts request returned %s", resp.Status),
		}
	}

	var out ContactsResponse
	err = json.Unmarshal(respBytes, &out)
	if err != nil {
		c.logger.Error("crm contacts decode failed", slog.Any("err", err))
		return ContactsResponse{}, &UpstreamError{
			StatusCode: resp.StatusCode,
			Detail:     err.Error(),
			Err:        fmt.Errorf("%w: decode contacts: %w", ErrUnexpectedResponse, err),
		}
	}

	return out, nil
}
