package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// ECBURL serves the European Central Bank euro reference rates.
const ECBURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// ECB loads the daily euro reference rates. Every rate is quoted as units
// of the foreign currency per one EUR.
type ECB struct {
	opts Options
}

// Element names carry no namespace so they match the gesmes envelope and
// the eurofxref default namespace alike.
type ecbEnvelope struct {
	Cube struct {
		Cube struct {
			Time  string    `xml:"time,attr"`
			Rates []ecbRate `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

type ecbRate struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

func (a *ECB) Method() string { return model.MethodECB }

func (a *ECB) BaseCurrency() string { return "EUR" }

// ValidateTickers accepts three-letter currency codes only.
func (a *ECB) ValidateTickers(spec ticker.Spec) error {
	return spec.Validate(ticker.Exactly(3))
}

func (a *ECB) Collect(ctx context.Context, t Transport, _ ticker.Spec) (*RateSet, string, error) {
	body, err := t.Do(ctx, Get(ECBURL))
	if err != nil {
		return nil, "", err
	}
	return a.parse(body)
}

func (a *ECB) parse(body []byte) (*RateSet, string, error) {
	var doc ecbEnvelope
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("failed to decode XML: %w", err)}
	}

	asOf, err := time.Parse("2006-01-02", doc.Cube.Cube.Time)
	if err != nil {
		return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("invalid cube time: %w", err)}
	}
	date := asOf.Format(DateLayout)

	set := NewRateSet()
	for _, r := range doc.Cube.Cube.Rates {
		code := strings.ToUpper(strings.TrimSpace(r.Currency))
		set.Put(code, model.RateRecord{
			RateDate:     date,
			CurrencyFrom: a.BaseCurrency(),
			CurrencyTo:   code,
			Rate:         strings.TrimSpace(r.Rate),
			Nominal:      1,
		})
	}
	return set, date, nil
}
