package provider

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// CBRFURL serves the Central Bank of Russia daily rate table.
const CBRFURL = "https://www.cbr.ru/scripts/XML_daily.asp"

// CBRF loads the daily ruble rates of the Central Bank of Russia.
// Every rate is quoted in RUB per Nominal units of the foreign currency.
type CBRF struct {
	opts Options
}

type cbrfValCurs struct {
	XMLName xml.Name     `xml:"ValCurs"`
	Date    string       `xml:"Date,attr"`
	Valutes []cbrfValute `xml:"Valute"`
}

type cbrfValute struct {
	CharCode string `xml:"CharCode"`
	Nominal  string `xml:"Nominal"`
	Value    string `xml:"Value"`
}

func (a *CBRF) Method() string { return model.MethodCBRF }

func (a *CBRF) BaseCurrency() string { return "RUB" }

// ValidateTickers accepts three-letter currency codes only.
func (a *CBRF) ValidateTickers(spec ticker.Spec) error {
	return spec.Validate(ticker.Exactly(3))
}

func (a *CBRF) Collect(ctx context.Context, t Transport, _ ticker.Spec) (*RateSet, string, error) {
	body, err := t.Do(ctx, Get(CBRFURL))
	if err != nil {
		return nil, "", err
	}
	return a.parse(body)
}

// parse decodes the windows-1251 XML table. Values use a decimal comma.
func (a *CBRF) parse(body []byte) (*RateSet, string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	var doc cbrfValCurs
	if err := decoder.Decode(&doc); err != nil {
		return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("failed to decode XML: %w", err)}
	}

	set := NewRateSet()
	for _, v := range doc.Valutes {
		code := strings.ToUpper(strings.TrimSpace(v.CharCode))
		nominal, err := strconv.Atoi(strings.TrimSpace(v.Nominal))
		if err != nil {
			return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("invalid nominal for %s: %w", code, err)}
		}

		set.Put(code, model.RateRecord{
			RateDate:     doc.Date,
			CurrencyFrom: code,
			CurrencyTo:   a.BaseCurrency(),
			Rate:         strings.ReplaceAll(strings.TrimSpace(v.Value), ",", "."),
			Nominal:      nominal,
		})
	}
	return set, doc.Date, nil
}
