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

// Binance REST endpoints.
const (
	BinanceExchangeInfoURL = "https://api.binance.com/api/v3/exchangeInfo"
	BinanceAvgPriceURL     = "https://api.binance.com/api/v3/avgPrice?symbol="
)

// Binance loads average prices of Binance spot markets. Markets are listed
// by one metadata call, then each selected market is priced separately.
type Binance struct {
	opts Options
}

type binanceExchangeInfo struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

type binanceAvgPrice struct {
	Price priceText `json:"price"`
}

func (a *Binance) Method() string { return model.MethodBinance }

func (a *Binance) BaseCurrency() string { return a.opts.BaseCurrency }

// ValidateTickers accepts symbols of two characters or more.
func (a *Binance) ValidateTickers(spec ticker.Spec) error {
	return spec.Validate(ticker.AtLeast(2))
}

// Collect prices only the markets the tickers select. An empty spec
// selects none.
func (a *Binance) Collect(ctx context.Context, t Transport, spec ticker.Spec) (*RateSet, string, error) {
	date := a.opts.today()

	body, err := t.Do(ctx, Get(BinanceExchangeInfoURL))
	if err != nil {
		return nil, "", err
	}

	var info binanceExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("failed to decode exchange info: %w", err)}
	}

	markets := make([]pair, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		markets = append(markets, pair{
			ID:    s.Symbol,
			Base:  strings.ToUpper(s.BaseAsset),
			Quote: strings.ToUpper(s.QuoteAsset),
		})
	}

	set := NewRateSet()
	for _, p := range resolvePairs(markets, spec) {
		rate, err := a.price(ctx, t, p)
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

// price returns the average price of one market, "0" when none is quoted.
func (a *Binance) price(ctx context.Context, t Transport, p pair) (string, error) {
	body, err := t.Do(ctx, Get(BinanceAvgPriceURL+url.QueryEscape(p.ID)))
	if err != nil {
		return "", err
	}

	var avg binanceAvgPrice
	if err := json.Unmarshal(body, &avg); err != nil {
		return "0", nil
	}
	return avg.Price.rate(), nil
}
