package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// XETableURL serves the XE mid-market table of one base currency.
const XETableURL = "https://www.xe.com/currencytables/"

// xeColumns is the number of text cells per table row:
// currency code, currency name, units per base, base per unit.
const xeColumns = 4

var errNoTableBody = errors.New("no table body in page")

// XE scrapes the XE currency tables. Each page lists every currency against
// one base, so one request is made per distinct base and both directions of
// every row are recorded.
type XE struct {
	opts Options
}

func (a *XE) Method() string { return model.MethodXE }

func (a *XE) BaseCurrency() string { return a.opts.BaseCurrency }

// ValidateTickers accepts symbols of three characters or more; the first
// three name the base currency page.
func (a *XE) ValidateTickers(spec ticker.Spec) error {
	return spec.Validate(ticker.AtLeast(3))
}

// asOf returns the table date to request. XE publishes with a lag, so
// before 05:00 the day before yesterday is used.
func (a *XE) asOf() time.Time {
	now := a.opts.now()
	if now.Hour() > 4 {
		return now.AddDate(0, 0, -1)
	}
	return now.AddDate(0, 0, -2)
}

// bases returns the distinct base currencies of spec in ticker order.
func bases(spec ticker.Spec) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range spec {
		base := t.Symbol
		if len(base) > 3 {
			base = base[:3]
		}
		if !seen[base] {
			seen[base] = true
			out = append(out, base)
		}
	}
	return out
}

func (a *XE) tableURL(base string, asOf time.Time) string {
	q := url.Values{}
	q.Set("from", base)
	q.Set("date", asOf.Format("2006-01-02"))
	return XETableURL + "?" + q.Encode()
}

// Collect requests one table per base currency. Records are stamped with
// today's date rather than the table date.
func (a *XE) Collect(ctx context.Context, t Transport, spec ticker.Spec) (*RateSet, string, error) {
	date := a.opts.today()
	asOf := a.asOf()

	set := NewRateSet()
	for _, base := range bases(spec) {
		body, err := t.Do(ctx, Get(a.tableURL(base, asOf)))
		if err != nil {
			return nil, "", err
		}

		cells, err := tableBodyStrings(body)
		if err != nil {
			return nil, "", &PayloadError{Method: a.Method(), Err: fmt.Errorf("table for %s: %w", base, err)}
		}

		for i := 0; i+xeColumns <= len(cells); i += xeColumns {
			quote := strings.ToUpper(cells[i])
			set.Put(base+quote, model.RateRecord{
				RateDate:     date,
				CurrencyFrom: base,
				CurrencyTo:   quote,
				Rate:         cleanNumber(cells[i+2]),
				Nominal:      1,
			})
			set.Put(quote+base, model.RateRecord{
				RateDate:     date,
				CurrencyFrom: quote,
				CurrencyTo:   base,
				Rate:         cleanNumber(cells[i+3]),
				Nominal:      1,
			})
		}
	}
	return set, date, nil
}

// tableBodyStrings returns the trimmed, non-empty text nodes of the first
// tbody in document order.
func tableBodyStrings(body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	tbody := findElement(doc, atom.Tbody)
	if tbody == nil {
		return nil, errNoTableBody
	}

	var cells []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				cells = append(cells, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(tbody)
	return cells, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// cleanNumber drops thousands separators from a table cell.
func cleanNumber(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
