package lookup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/DSACMS/student-lookup-service/pkg/crm"
	"github.com/stretchr/testify/require"
)

type fakeCall struct {
	resp crm.ContactsResponse
	err  error
}

// fakeContacts answers ListContacts with queued results, in order.
type fakeContacts struct {
	queue   []fakeCall
	queries []crm.ContactsQuery
}

func (f *fakeContacts) ListContacts(_ context.Context, q crm.ContactsQuery) (crm.ContactsResponse, error) {
	f.queries = append(f.queries, q)
	if len(f.queue) == 0 {
		return crm.ContactsResponse{}, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next.resp, next.err
}

func (f *fakeContacts) respond(t *testing.T, body string) *fakeContacts {
	t.Helper()

	var resp crm.ContactsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	f.queue = append(f.queue, fakeCall{resp: resp})
	return f
}

func (f *fakeContacts) fail(err error) *fakeContacts {
	f.queue = append(f.queue, fakeCall{err: err})
	return f
}

func newTestService(t *testing.T, contacts crm.Client) Service {
	t.Helper()

	svc, err := New(contacts, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	return svc
}

// newLoggedService captures the service's logs as JSON lines.
func newLoggedService(t *testing.T, contacts crm.Client) (Service, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	svc, err := New(contacts, Options{Logger: slog.New(slog.NewJSONHandler(&buf, nil))})
	require.NoError(t, err)
	return svc, &buf
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}
