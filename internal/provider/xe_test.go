package provider

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

const xeUSDFixture = `<!DOCTYPE html>
<html>
<head><title>XE Currency Tables</title><script>var x = "ignored";</script></head>
<body>
	<table>
		<thead><tr><th>Currency</th><th>Name</th><th>Units per USD</th><th>USD per unit</th></tr></thead>
		<tbody>
			<tr><th><a href="/currency/eur">EUR</a></th><td>Euro</td><td>0.9286</td><td>1.0769</td></tr>
			<tr><th><a href="/currency/jpy">JPY</a></th><td>Japanese Yen</td><td>139.4200</td><td>0.0071726</td></tr>
			<tr><th><a href="/currency/irr">IRR</a></th><td>Iranian Rial</td><td>42,275.0000</td><td>0.0000236546</td></tr>
		</tbody>
	</table>
</body>
</html>`

const xeEURFixture = `<!DOCTYPE html>
<html>
<body>
	<table>
		<thead><tr><th>Currency</th><th>Name</th><th>Units per EUR</th><th>EUR per unit</th></tr></thead>
		<tbody>
			<tr><th><a href="/currency/usd">USD</a></th><td>US Dollar</td><td>1.0770</td><td>0.92851</td></tr>
		</tbody>
	</table>
</body>
</html>`

func TestXE_AsOf(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "after 04:00 uses yesterday", now: time.Date(2023, 6, 9, 5, 0, 0, 0, time.UTC), want: "2023-06-08"},
		{name: "at 04:59 uses two days prior", now: time.Date(2023, 6, 9, 4, 59, 0, 0, time.UTC), want: "2023-06-07"},
		{name: "midnight uses two days prior", now: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), want: "2023-02-27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &XE{opts: Options{Now: fixedNow(tt.now)}}

			if got := a.asOf().Format("2006-01-02"); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestXE_Fetch(t *testing.T) {
	usdURL := XETableURL + "?date=2023-06-08&from=USD"
	eurURL := XETableURL + "?date=2023-06-08&from=EUR"

	newAdapter := func(t *testing.T) Adapter {
		t.Helper()
		return mustAdapter(t, model.MethodXE, Options{Now: fixedNow(june9)})
	}

	t.Run("records both directions of each row", func(t *testing.T) {
		// Setup
		transport := newFakeTransport().on(usdURL, xeUSDFixture)

		// Execute
		records := mustFetch(t, newAdapter(t), transport, ticker.Parse("USDEUR,*USD"), 4)

		// Assert
		want := model.RateRecord{
			RateDate:     "09.06.2023",
			CurrencyFrom: "USD",
			CurrencyTo:   "EUR",
			Rate:         "0.9286",
			Nominal:      1,
		}
		if records[0] != want {
			t.Errorf("Expected %+v, got %+v", want, records[0])
		}
		want = model.RateRecord{
			RateDate:     "09.06.2023",
			CurrencyFrom: "EUR",
			CurrencyTo:   "USD",
			Rate:         "1.0769",
			Nominal:      1,
		}
		if records[1] != want {
			t.Errorf("Expected %+v, got %+v", want, records[1])
		}
		if wantCalls := []string{usdURL}; !slices.Equal(transport.calls, wantCalls) {
			t.Errorf("Expected calls %v, got %v", wantCalls, transport.calls)
		}
	})

	t.Run("requests each base page in ticker order", func(t *testing.T) {
		// Setup
		transport := newFakeTransport().
			on(usdURL, xeUSDFixture).
			on(eurURL, xeEURFixture)

		// Execute
		records := mustFetch(t, newAdapter(t), transport, ticker.Parse("USDEUR,EURUSD"), 2)

		// Assert
		if wantCalls := []string{usdURL, eurURL}; !slices.Equal(transport.calls, wantCalls) {
			t.Errorf("Expected calls %v, got %v", wantCalls, transport.calls)
		}
		// A pair listed on both pages takes the rate of the later page.
		if records[0].CurrencyFrom+records[0].CurrencyTo != "USDEUR" || records[0].Rate != "0.92851" {
			t.Errorf("Expected USDEUR at 0.92851, got %+v", records[0])
		}
		if records[1].CurrencyFrom+records[1].CurrencyTo != "EURUSD" || records[1].Rate != "1.0770" {
			t.Errorf("Expected EURUSD at 1.0770, got %+v", records[1])
		}
	})

	t.Run("one request per distinct base", func(t *testing.T) {
		transport := newFakeTransport().on(usdURL, xeUSDFixture)

		records := mustFetch(t, newAdapter(t), transport, ticker.Parse("USD*,USDJPY,*USD"), 7)

		if wantCalls := []string{usdURL}; !slices.Equal(transport.calls, wantCalls) {
			t.Errorf("Expected calls %v, got %v", wantCalls, transport.calls)
		}
		// USD* -> 3 forward rows, USDJPY -> 1, *USD -> 3 inverse rows.
		if records[2].Rate != "42275.0000" {
			t.Errorf("Expected grouping stripped from 42,275.0000, got %s", records[2].Rate)
		}
		if records[6].CurrencyTo != "USD" {
			t.Errorf("Expected inverse row quoted in USD, got %s", records[6].CurrencyTo)
		}
	})

	t.Run("script text is not read as a cell", func(t *testing.T) {
		cells, err := tableBodyStrings([]byte(xeUSDFixture))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(cells) != 12 {
			t.Errorf("Expected 12 cells, got %d", len(cells))
		}
		if want := []string{"EUR", "Euro", "0.9286", "1.0769"}; !slices.Equal(cells[:4], want) {
			t.Errorf("Expected %v, got %v", want, cells[:4])
		}
	})

	t.Run("page without a table body is a payload error", func(t *testing.T) {
		transport := newFakeTransport().on(usdURL, `<html><body><p>Maintenance</p></body></html>`)

		_, err := Fetch(context.Background(), newAdapter(t), transport, ticker.Parse("USDEUR"))

		if !errors.Is(err, ErrPayload) {
			t.Errorf("Expected ErrPayload, got %v", err)
		}
	})

	t.Run("empty tickers request nothing", func(t *testing.T) {
		transport := newFakeTransport()

		mustFetch(t, newAdapter(t), transport, ticker.Spec{}, 0)

		if len(transport.calls) != 0 {
			t.Errorf("Expected no calls, got %v", transport.calls)
		}
	})
}
