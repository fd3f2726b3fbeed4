package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 16 << 20

const userAgent = "Mozilla/5.0 (compatible; currency-rate-loader/1.0)"

// HTTPTransport performs upstream calls over HTTP.
type HTTPTransport struct {
	httpClient *http.Client
}

// NewHTTPTransport creates a transport whose requests time out after timeout.
// A zero timeout disables the client timeout; the request context still applies.
//
// Parameters:
//   - timeout: Per-request timeout including reading the body
//
// Returns:
//   - *HTTPTransport: A transport ready for use by adapters
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Do sends req and returns the response body.
//
// Non-2xx responses return a *TransportError carrying the status code and
// the reason phrase the upstream sent. Failures without a response (DNS, refused connection,
// timeout, cancelled context) return a *TransportError with StatusCode 0.
func (t *HTTPTransport) Do(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &TransportError{
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	return body, nil
}

// reasonPhrase returns the reason from the status line, or the standard
// text for the code when the upstream sent none.
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
