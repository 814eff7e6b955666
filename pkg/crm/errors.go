package crm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const maxErrBodyBytes = 800

var ErrUnexpectedResponse = errors.New("unexpected crm response")

// UpstreamError is returned for every failed CRM call. Detail carries what
// the CRM said, when it said anything.
type UpstreamError struct {
	StatusCode int
	// Decoded JSON body, a text snippet, or the transport error message.
	Detail any
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("crm request failed: status=%d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("crm request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DetailOf extracts the CRM detail from err, falling back to its message.
func DetailOf(err error) any {
	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.Detail != nil {
		return upstream.Detail
	}
	if err == nil {
		return nil
	}
	return err.Error()
}

func bodyDetail(body []byte) any {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}

	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}

	if len(trimmed) > maxErrBodyBytes {
		trimmed = trimmed[:maxErrBodyBytes] + "..."
	}
	return trimmed
}
