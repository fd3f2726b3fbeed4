package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Error codes attached to records in a run summary.
const (
	CodeNotFound    = "404"
	CodeInvalidRate = "422"
	CodeDuplicate   = "429"
)

// RateError describes why a record in a run summary carries no usable rate.
type RateError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// RateRecord is the normalized rate produced by every provider.
// Rate keeps the decimal text exactly as the source reported it.
type RateRecord struct {
	RateDate     string     `json:"rateDate"`
	CurrencyFrom string     `json:"currencyFrom"`
	CurrencyTo   string     `json:"currencyTo"`
	Rate         string     `json:"rate"`
	Nominal      int        `json:"nominal"`
	Error        *RateError `json:"error,omitempty"`
}

// NotFoundRecord builds the placeholder emitted for a requested ticker that
// the provider did not return.
func NotFoundRecord(rateDate, currencyFrom, currencyTo string) RateRecord {
	return RateRecord{
		RateDate:     rateDate,
		CurrencyFrom: currencyFrom,
		CurrencyTo:   currencyTo,
		Rate:         "0",
		Nominal:      0,
		Error: &RateError{
			Code:        CodeNotFound,
			Description: "Currency not found",
		},
	}
}

// IsPlaceholder reports whether the record carries an error instead of data.
func (r RateRecord) IsPlaceholder() bool {
	return r.Error != nil
}

// Annotated returns a copy of r with the given error attached.
func (r RateRecord) Annotated(code, description string) RateRecord {
	r.Error = &RateError{Code: code, Description: description}
	return r
}

// CurrencyRate is a stored rate row.
type CurrencyRate struct {
	ID           string          `json:"id"`
	RateTypeID   string          `json:"rateTypeId"`
	CurrencyFrom string          `json:"currencyFrom"`
	CurrencyTo   string          `json:"currencyTo"`
	Rate         decimal.Decimal `json:"rate"`
	RateDate     time.Time       `json:"rateDate"`
	Nominal      int             `json:"nominal"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RateKey identifies semantically identical stored rates.
type RateKey struct {
	RateTypeID   string
	CurrencyFrom string
	CurrencyTo   string
	RateDate     time.Time
	Rate         decimal.Decimal
	Nominal      int
}

// Key returns the deduplication key of the stored rate.
func (c CurrencyRate) Key() RateKey {
	return RateKey{
		RateTypeID:   c.RateTypeID,
		CurrencyFrom: c.CurrencyFrom,
		CurrencyTo:   c.CurrencyTo,
		RateDate:     c.RateDate,
		Rate:         c.Rate,
		Nominal:      c.Nominal,
	}
}

// CurrencyRateFilter narrows the rates returned for a rate type.
// Zero values are ignored.
type CurrencyRateFilter struct {
	CurrencyFrom string
	CurrencyTo   string
	RateDate     time.Time
	Limit        int
}
