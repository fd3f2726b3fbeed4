// Package provider implements the rate sources a rate type can load from.
//
// Every source satisfies Adapter. Adapters only know how to talk to their
// upstream and turn its payload into a RateSet; ticker resolution and
// not-found placeholders are applied once for all of them by Normalize.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/apperrors"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// DateLayout is the rate date format produced by adapters that stamp
// records with the current day.
const DateLayout = "02.01.2006"

// Adapter is a single upstream rate source.
type Adapter interface {
	// Method returns the autoload method the adapter is registered under.
	Method() string

	// BaseCurrency returns the currency used as the quote side of
	// not-found placeholders. Empty when the source has none.
	BaseCurrency() string

	// ValidateTickers rejects tickers the source cannot serve. It never
	// performs I/O and returns a *ticker.FormatError on failure.
	ValidateTickers(spec ticker.Spec) error

	// Collect requests the upstream and returns its rates keyed by symbol
	// in upstream order, together with the as-of date they carry.
	Collect(ctx context.Context, t Transport, spec ticker.Spec) (*RateSet, string, error)
}

// Request is an outbound upstream call.
type Request struct {
	Method string
	URL    string
}

// Get builds a GET request for url.
func Get(url string) Request {
	return Request{Method: http.MethodGet, URL: url}
}

// Transport performs upstream calls and returns the response body.
// Implementations return a *TransportError for non-2xx responses and
// connection failures.
type Transport interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// ErrTransport is matched by every *TransportError.
var ErrTransport = errors.New("upstream request failed")

// ErrPayload is matched by every *PayloadError.
var ErrPayload = errors.New("upstream payload invalid")

// TransportError reports a failed upstream call. StatusCode is zero when no
// response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s: %v", ErrTransport, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %s: %d %s", ErrTransport, e.URL, e.StatusCode, e.Reason)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PayloadError reports an upstream response that could not be decoded.
type PayloadError struct {
	Method string
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPayload, e.Method, e.Err)
}

func (e *PayloadError) Is(target error) bool {
	return target == ErrPayload
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// Failure converts an error returned by Collect into the run summary entry
// stored for the aborted cycle. It returns false for errors that are not
// upstream failures.
func Failure(err error) (model.RunFailure, bool) {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.StatusCode == 0 {
			return model.RunFailure{StatusCode: http.StatusInternalServerError, Reason: "ConnectionError"}, true
		}
		return model.RunFailure{StatusCode: transportErr.StatusCode, Reason: transportErr.Reason}, true
	}

	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		return model.RunFailure{StatusCode: http.StatusInternalServerError, Reason: "InvalidResponse"}, true
	}

	return model.RunFailure{}, false
}

// Options configures an adapter at construction. It is not changed afterwards.
type Options struct {
	// BaseCurrency overrides the placeholder quote currency of sources
	// without a fixed base. Ignored by CBRF and ECB.
	BaseCurrency string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) today() string {
	return o.now().Format(DateLayout)
}

type factory func(opts Options) Adapter

var registry = map[string]factory{
	model.MethodCBRF:     func(opts Options) Adapter { return &CBRF{opts: opts} },
	model.MethodECB:      func(opts Options) Adapter { return &ECB{opts: opts} },
	model.MethodBinance:  func(opts Options) Adapter { return &Binance{opts: opts} },
	model.MethodGarantex: func(opts Options) Adapter { return &Garantex{opts: opts} },
	model.MethodXE:       func(opts Options) Adapter { return &XE{opts: opts} },
}

// New returns the adapter registered for method.
// empty_method and unknown methods return apperrors.ErrUnknownMethod.
func New(method string, opts Options) (Adapter, error) {
	build, ok := registry[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownMethod, method)
	}
	opts.BaseCurrency = strings.ToUpper(strings.TrimSpace(opts.BaseCurrency))
	return build(opts), nil
}

// IsRegistered reports whether method has an adapter.
func IsRegistered(method string) bool {
	_, ok := registry[method]
	return ok
}
