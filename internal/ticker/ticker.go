// Package ticker parses the comma-separated ticker lists configured on a
// rate type into tagged tokens.
//
// A token is either an exact symbol ("USDEUR"), a leading wildcard ("*EUR")
// that selects every pair quoted in EUR, or a trailing wildcard ("USD*")
// that selects every pair based on USD.
package ticker

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the character marking an open end of a ticker.
const Wildcard = "*"

// ErrTickerFormat is matched by every *FormatError.
var ErrTickerFormat = errors.New("invalid ticker format")

// Kind tags how a ticker is matched against provider records.
type Kind int

const (
	// KindExact matches a record by its symbol key.
	KindExact Kind = iota
	// KindAnyFrom ("*EUR") matches records whose quote currency is the symbol.
	KindAnyFrom
	// KindAnyTo ("USD*") matches records whose base currency is the symbol.
	KindAnyTo
)

func (k Kind) String() string {
	switch k {
	case KindAnyFrom:
		return "any-from"
	case KindAnyTo:
		return "any-to"
	default:
		return "exact"
	}
}

// Ticker is one parsed token.
type Ticker struct {
	Raw    string // uppercased token as configured, stars included
	Symbol string // Raw without the wildcard
	Kind   Kind
}

// IsWildcard reports whether t selects records by currency rather than key.
func (t Ticker) IsWildcard() bool {
	return t.Kind != KindExact
}

// Spec is the ordered list of tickers of one rate type.
type Spec []Ticker

// FormatError reports a ticker rejected before any request is made.
type FormatError struct {
	Token  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrTickerFormat, e.Token, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrTickerFormat
}

// Parse turns a raw ticker string into a Spec.
//
// Slashes are removed, trailing commas and surrounding whitespace are
// stripped and every token is uppercased. Empty input yields an empty Spec.
func Parse(raw string) Spec {
	cleaned := strings.ReplaceAll(raw, "/", "")
	cleaned = strings.TrimRight(strings.TrimSpace(cleaned), ",")
	if strings.TrimSpace(cleaned) == "" {
		return Spec{}
	}

	parts := strings.Split(cleaned, ",")
	spec := make(Spec, 0, len(parts))
	for _, part := range parts {
		token := strings.ToUpper(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		spec = append(spec, newTicker(token))
	}
	return spec
}

func newTicker(token string) Ticker {
	switch {
	case len(token) > 1 && strings.HasPrefix(token, Wildcard):
		return Ticker{Raw: token, Symbol: strings.TrimPrefix(token, Wildcard), Kind: KindAnyFrom}
	case len(token) > 1 && strings.HasSuffix(token, Wildcard):
		return Ticker{Raw: token, Symbol: strings.TrimSuffix(token, Wildcard), Kind: KindAnyTo}
	default:
		return Ticker{Raw: token, Symbol: token, Kind: KindExact}
	}
}

// String joins the tokens back into the configured form.
func (s Spec) String() string {
	raws := make([]string, len(s))
	for i, t := range s {
		raws[i] = t.Raw
	}
	return strings.Join(raws, ",")
}

// IsEmpty reports whether the Spec selects everything the provider offers.
func (s Spec) IsEmpty() bool {
	return len(s) == 0
}

// Rule bounds the length of a ticker symbol, wildcard excluded.
// A zero Max means unbounded.
type Rule struct {
	Min int
	Max int
}

// Exactly returns a Rule accepting symbols of length n only.
func Exactly(n int) Rule {
	return Rule{Min: n, Max: n}
}

// AtLeast returns a Rule accepting symbols of length n or more.
func AtLeast(n int) Rule {
	return Rule{Min: n}
}

// Validate checks every ticker's wildcard placement and symbol length.
// The first offending ticker is returned as a *FormatError.
func (s Spec) Validate(rule Rule) error {
	for _, t := range s {
		if err := t.validate(rule); err != nil {
			return err
		}
	}
	return nil
}

func (t Ticker) validate(rule Rule) error {
	if t.Symbol == Wildcard || t.Symbol == "" {
		return &FormatError{Token: t.Raw, Reason: "wildcard without symbol"}
	}
	if strings.Contains(t.Symbol, Wildcard) {
		return &FormatError{Token: t.Raw, Reason: "wildcard allowed only at start or end"}
	}

	n := len(t.Symbol)
	switch {
	case rule.Max > 0 && rule.Min == rule.Max && n != rule.Min:
		return &FormatError{Token: t.Raw, Reason: fmt.Sprintf("must be exactly %d characters", rule.Min)}
	case n < rule.Min:
		return &FormatError{Token: t.Raw, Reason: fmt.Sprintf("must be at least %d characters", rule.Min)}
	case rule.Max > 0 && n > rule.Max:
		return &FormatError{Token: t.Raw, Reason: fmt.Sprintf("must be at most %d characters", rule.Max)}
	}
	return nil
}
