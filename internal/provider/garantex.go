package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// Garantex REST endpoints.
const (
	GarantexMarketsURL = "https://garantex.org/api/v2/markets"
	GarantexTradesURL  = "https://garantex.org/api/v2/trades?market="
)

// Garantex loads last trade prices of Garantex markets. Market ids and units
// are lowercase upstream and uppercased in the records.
type Garantex struct {
	opts Options
}

type garantexMarket struct {
	ID      string `json:"id"`
	AskUnit string `json:"ask_unit"`
	BidUnit string `json:"bid_unit"`
}

type garantexTrade struct {
	Price priceText `json:"price"`
}

func (a *Garantex) Method() string { return model.MethodGarantex }

func (a *Garantex) BaseCurrency() string { return a.opts.BaseCurrency }

// ValidateTickers accepts symbols of two characters or more.
func (a *Garantex) ValidateTickers(spec ticker.Spec) error {
	return spec.Validate(ticker.AtLeast(2))
}

func (a *Garantex) Collect(ctx context.Context, t Transport, spec ticker.Spec) (*RateSet, string, error) {
	date := a.opts.today()

	body, err := t.Do(ctx, Get(GarantexMarketsURL))
	if err != nil {
		return nil, "", err
	}

	var listed []garantexMarket
	if err := json.Unmarshal(body, &listed); err != nil {
		return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("failed to decode markets: %w", err)}
	}

	markets := make([]pair, 0, len(listed))
	for _, m := range listed {
		markets = append(markets, pair{
			ID:    strings.ToLower(m.ID),
			Base:  strings.ToUpper(m.AskUnit),
			Quote: strings.ToUpper(m.BidUnit),
		})
	}

	set := NewRateSet()
	for _, p := range resolvePairs(markets, spec) {
		rate, err := a.lastTrade(ctx, t, p)
		if err != nil {
			return nil, "", err
		}
		set.Put(p.key(), model.RateRecord{
			RateDate:     date,
			CurrencyFrom: p.Base,
			CurrencyTo:   p.Quote,
			Rate:         rate,
			Nominal:      1,
		})
	}
	return set, date, nil
}

// lastTrade returns the price of the most recent trade, "0" when the market
// has no trades.
func (a *Garantex) lastTrade(ctx context.Context, t Transport, p pair) (string, error) {
	body, err := t.Do(ctx, Get(GarantexTradesURL+url.QueryEscape(p.ID)))
	if err != nil {
		return "", err
	}

	var trades []garantexTrade
	if err := json.Unmarshal(body, &trades); err != nil || len(trades) == 0 {
		return "0", nil
	}
	return trades[0].Price.rate(), nil
}
