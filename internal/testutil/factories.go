package testutil

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
)

// RateTypeBuilder provides a fluent interface for creating test rate types.
//
// Example usage:
//
//	// Simple creation with defaults (CBRF, every minute, no tickers)
//	rt := testutil.NewRateType().Build(t, db)
//
//	// Customized rate type
//	rt := testutil.NewRateType().
//	    WithMethod(model.MethodBinance).
//	    WithTickers("BTCUSDT, ETH*").
//	    WithBaseCurrency("USDT").
//	    Build(t, db)
type RateTypeBuilder struct {
	ID             string
	Name           string
	AutoloadMethod string
	BaseCurrency   string
	Active         bool
	IntervalValue  int
	Tickers        string
	LastRun        *time.Time
	LastResult     *model.RunResult
}

// NewRateType creates a RateTypeBuilder with sensible defaults.
func NewRateType() *RateTypeBuilder {
	return &RateTypeBuilder{
		ID:             MakeID(),
		Name:           MakeRateTypeName("RT"),
		AutoloadMethod: model.MethodCBRF,
		Active:         true,
		IntervalValue:  1,
	}
}

// WithID sets a custom ID.
func (b *RateTypeBuilder) WithID(id string) *RateTypeBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *RateTypeBuilder) WithName(name string) *RateTypeBuilder {
	b.Name = name
	return b
}

// WithMethod sets the autoload method.
func (b *RateTypeBuilder) WithMethod(method string) *RateTypeBuilder {
	b.AutoloadMethod = method
	return b
}

// WithBaseCurrency sets the base currency.
func (b *RateTypeBuilder) WithBaseCurrency(currency string) *RateTypeBuilder {
	b.BaseCurrency = currency
	return b
}

// WithTickers sets the raw ticker list.
func (b *RateTypeBuilder) WithTickers(tickers string) *RateTypeBuilder {
	b.Tickers = tickers
	return b
}

// WithInterval sets the polling interval in minutes.
func (b *RateTypeBuilder) WithInterval(minutes int) *RateTypeBuilder {
	b.IntervalValue = minutes
	return b
}

// WithLastRun sets when the rate type last ran.
func (b *RateTypeBuilder) WithLastRun(lastRun time.Time) *RateTypeBuilder {
	b.LastRun = &lastRun
	return b
}

// WithLastResult sets the stored summary of the last run.
func (b *RateTypeBuilder) WithLastResult(result model.RunResult) *RateTypeBuilder {
	b.LastResult = &result
	return b
}

// Inactive marks the rate type as inactive.
func (b *RateTypeBuilder) Inactive() *RateTypeBuilder {
	b.Active = false
	return b
}

// Build creates the rate type in the database and returns it.
func (b *RateTypeBuilder) Build(t *testing.T, db *sql.DB) model.RateType {
	t.Helper()

	var lastRun, lastResult sql.NullString
	if b.LastRun != nil {
		lastRun = sql.NullString{String: b.LastRun.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	if b.LastResult != nil {
		payload, err := json.Marshal(b.LastResult)
		if err != nil {
			t.Fatalf("Failed to encode test run result: %v", err)
		}
		lastResult = sql.NullString{String: string(payload), Valid: true}
	}

	var base sql.NullString
	if b.BaseCurrency != "" {
		base = sql.NullString{String: b.BaseCurrency, Valid: true}
	}

	createdAt := time.Now().UTC()

	query := `
		INSERT INTO rate_type (id, name, autoload_method, base_currency, active, interval_value, tickers,
			autoload_lastrun, autoload_lastresult, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.Name, b.AutoloadMethod, base, b.Active, b.IntervalValue, b.Tickers,
		lastRun, lastResult, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		t.Fatalf("Failed to create test rate type: %v", err)
	}

	return model.RateType{
		ID:             b.ID,
		Name:           b.Name,
		AutoloadMethod: b.AutoloadMethod,
		BaseCurrency:   b.BaseCurrency,
		Active:         b.Active,
		IntervalValue:  b.IntervalValue,
		Tickers:        b.Tickers,
		LastRun:        b.LastRun,
		LastResult:     b.LastResult,
		CreatedAt:      createdAt,
	}
}

// CurrencyRateBuilder provides a fluent interface for creating stored rates.
//
// Example usage:
//
//	rate := testutil.NewCurrencyRate(rt.ID).
//	    WithPair("USD", "RUB").
//	    WithRate("82.03").
//	    Build(t, db)
type CurrencyRateBuilder struct {
	ID           string
	RateTypeID   string
	CurrencyFrom string
	CurrencyTo   string
	Rate         decimal.Decimal
	RateDate     time.Time
	Nominal      int
}

// NewCurrencyRate creates a CurrencyRateBuilder with sensible defaults.
func NewCurrencyRate(rateTypeID string) *CurrencyRateBuilder {
	return &CurrencyRateBuilder{
		ID:           MakeID(),
		RateTypeID:   rateTypeID,
		CurrencyFrom: "USD",
		CurrencyTo:   "RUB",
		Rate:         decimal.RequireFromString("82.03"),
		RateDate:     time.Date(2023, 6, 9, 0, 0, 0, 0, time.UTC),
		Nominal:      1,
	}
}

// WithPair sets the source and target currencies.
func (b *CurrencyRateBuilder) WithPair(from, to string) *CurrencyRateBuilder {
	b.CurrencyFrom = from
	b.CurrencyTo = to
	return b
}

// WithRate sets the rate from its decimal text.
func (b *CurrencyRateBuilder) WithRate(rate string) *CurrencyRateBuilder {
	b.Rate = decimal.RequireFromString(rate)
	return b
}

// WithDate sets the rate date.
func (b *CurrencyRateBuilder) WithDate(date time.Time) *CurrencyRateBuilder {
	b.RateDate = date
	return b
}

// WithNominal sets the nominal.
func (b *CurrencyRateBuilder) WithNominal(nominal int) *CurrencyRateBuilder {
	b.Nominal = nominal
	return b
}

// Build creates the rate in the database and returns it.
func (b *CurrencyRateBuilder) Build(t *testing.T, db *sql.DB) model.CurrencyRate {
	t.Helper()

	createdAt := time.Now().UTC()

	query := `
		INSERT INTO currency_rate (id, rate_type_id, currency_from, currency_to, rate, rate_date, nominal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.RateTypeID, b.CurrencyFrom, b.CurrencyTo, b.Rate.String(),
		b.RateDate.Format("2006-01-02"), b.Nominal, createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		t.Fatalf("Failed to create test currency rate: %v", err)
	}

	return model.CurrencyRate{
		ID:           b.ID,
		RateTypeID:   b.RateTypeID,
		CurrencyFrom: b.CurrencyFrom,
		CurrencyTo:   b.CurrencyTo,
		Rate:         b.Rate,
		RateDate:     b.RateDate,
		Nominal:      b.Nominal,
		CreatedAt:    createdAt,
	}
}
