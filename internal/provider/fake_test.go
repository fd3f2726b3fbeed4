package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

type fakeResponse struct {
	body   string
	status int
}

// fakeTransport answers requests from a URL-keyed table and records calls.
// Unknown URLs answer 404.
type fakeTransport struct {
	responses map[string]fakeResponse
	calls     []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string]fakeResponse)}
}

func (f *fakeTransport) on(url, body string) *fakeTransport {
	f.responses[url] = fakeResponse{body: body, status: http.StatusOK}
	return f
}

func (f *fakeTransport) onStatus(url string, status int) *fakeTransport {
	f.responses[url] = fakeResponse{status: status}
	return f
}

func (f *fakeTransport) Do(_ context.Context, req Request) ([]byte, error) {
	f.calls = append(f.calls, req.URL)

	resp, ok := f.responses[req.URL]
	if !ok {
		resp = fakeResponse{status: http.StatusNotFound}
	}
	if resp.status < 200 || resp.status > 299 {
		return nil, &TransportError{URL: req.URL, StatusCode: resp.status, Reason: http.StatusText(resp.status)}
	}
	return []byte(resp.body), nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mustAdapter builds the adapter registered for method or fails the test.
func mustAdapter(t *testing.T, method string, opts Options) Adapter {
	t.Helper()
	a, err := New(method, opts)
	if err != nil {
		t.Fatalf("New(%s) returned unexpected error: %v", method, err)
	}
	return a
}

// mustFetch runs Fetch and fails the test on error or an unexpected record count.
func mustFetch(t *testing.T, a Adapter, transport Transport, spec ticker.Spec, wantLen int) []model.RateRecord {
	t.Helper()
	records, err := Fetch(context.Background(), a, transport, spec)
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}
	if len(records) != wantLen {
		t.Fatalf("Expected %d records, got %d: %+v", wantLen, len(records), records)
	}
	return records
}
