package testutil

import (
	"context"
	"net/http"
	"sync"

	"github.com/ndewijer/Currency-Rate-Loader/internal/provider"
)

type mockResponse struct {
	body   []byte
	status int
}

// MockTransport is a mock implementation of provider.Transport for testing.
// It answers requests from a URL-keyed table instead of calling upstreams.
// URLs without a configured response answer 404.
type MockTransport struct {
	mu        sync.Mutex
	responses map[string]mockResponse
	// MockError is returned for every request when set
	MockError error
	// Calls records every requested URL in order
	Calls []string
}

// NewMockTransport creates a mock transport with no configured responses.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]mockResponse),
	}
}

// Do answers req from the configured responses.
func (m *MockTransport) Do(_ context.Context, req provider.Request) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req.URL)
	if m.MockError != nil {
		return nil, m.MockError
	}

	resp, ok := m.responses[req.URL]
	if !ok {
		resp = mockResponse{status: http.StatusNotFound}
	}
	if resp.status < 200 || resp.status > 299 {
		return nil, &provider.TransportError{
			URL:        req.URL,
			StatusCode: resp.status,
			Reason:     http.StatusText(resp.status),
		}
	}
	return resp.body, nil
}

// CallCount returns how many requests were made.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// WithResponse configures the mock to answer url with a 200 and body.
func (m *MockTransport) WithResponse(url, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = mockResponse{body: []byte(body), status: http.StatusOK}
	return m
}

// WithStatus configures the mock to answer url with the given status and no body.
func (m *MockTransport) WithStatus(url string, status int) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = mockResponse{status: status}
	return m
}

// WithError configures the mock to fail every request with err.
func (m *MockTransport) WithError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MockError = err
	return m
}

// CBRFDailyXML is a small CBRF daily table dated 09.06.2023.
const CBRFDailyXML = `<?xml version="1.0" encoding="UTF-8"?>
<ValCurs Date="09.06.2023" name="Foreign Currency Market">
	<Valute ID="R01235">
		<NumCode>840</NumCode>
		<CharCode>USD</CharCode>
		<Nominal>1</Nominal>
		<Name>US Dollar</Name>
		<Value>82,0300</Value>
	</Valute>
	<Valute ID="R01239">
		<NumCode>978</NumCode>
		<CharCode>EUR</CharCode>
		<Nominal>1</Nominal>
		<Name>Euro</Name>
		<Value>88,1510</Value>
	</Valute>
	<Valute ID="R01375">
		<NumCode>156</NumCode>
		<CharCode>CNY</CharCode>
		<Nominal>10</Nominal>
		<Name>Yuan</Name>
		<Value>115,3680</Value>
	</Valute>
</ValCurs>`
