package provider

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// Normalize flattens the resolved records of spec into the sequence stored
// as a run summary.
//
// Every ticker of a non-empty spec contributes its matches in order, or
// exactly one 404 placeholder when it matched nothing. The placeholder's
// quote currency is base, falling back to the ticker symbol.
func Normalize(set *RateSet, spec ticker.Spec, base, date string) []model.RateRecord {
	if spec.IsEmpty() {
		return set.Records()
	}

	out := make([]model.RateRecord, 0, len(spec))
	for _, m := range Resolve(set, spec) {
		if m.Found() {
			out = append(out, m.Records...)
			continue
		}

		to := base
		if to == "" {
			to = m.Ticker.Symbol
		}
		out = append(out, model.NotFoundRecord(date, m.Ticker.Raw, to))
	}
	return out
}

// Fetch runs one adapter against its upstream and returns the normalized
// records. Tickers must have been validated by the caller.
func Fetch(ctx context.Context, a Adapter, t Transport, spec ticker.Spec) ([]model.RateRecord, error) {
	set, date, err := a.Collect(ctx, t, spec)
	if err != nil {
		return nil, err
	}
	return Normalize(set, spec, a.BaseCurrency(), date), nil
}

// priceText is a price field that upstreams encode either as a JSON string
// or as a bare number. The text is kept as sent.
type priceText string

func (p *priceText) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*p = ""
	case strings.HasPrefix(s, `"`):
		*p = priceText(strings.Trim(s, `"`))
	default:
		*p = priceText(s)
	}
	return nil
}

// rate returns the price text, or "0" when the upstream sent no usable price.
func (p priceText) rate() string {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return "0"
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return "0"
	}
	return s
}
