package security

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aliciawyy/MorningScraper/date"
	"github.com/aliciawyy/MorningScraper/fetch"
)

const stockPageHTML = `<html><body>
<div class="securityHeader">
<span class="securityName">Acme Corp</span>
<span class="securityTicker">ACM</span>
</div>
<div id="quoteHeader">
<span id="Col0Price">123.45</span>
<span id="Col0PriceDetail">0.85|0.70%</span>
<p id="Col0PriceTime">As of 05/03/2022 17:35 UTC+00:00 | USD  Minimum 15 minute delay</p>
</div>
<table><tr><td id="Col0Isin">US0000000001</td></tr></table>
</body></html>`

const stockURL = "http://www.morningstar.co.uk/uk/stockreport/default.aspx?SecurityToken=0P0000ACME"

func TestStockPageCanHandle(t *testing.T) {
	p := &StockPage{}
	if !p.CanHandle(stockURL) {
		t.Errorf("CanHandle(%q) = false, want true", stockURL)
	}
	if p.CanHandle("http://www.morningstar.co.uk/uk/funds/snapshot/snapshot.aspx?id=F0") {
		t.Error("CanHandle matched a fund snapshot URL")
	}
}

func TestStockPageExtract(t *testing.T) {
	got, err := (&StockPage{}).Extract(mustDoc(t, stockPageHTML), stockURL)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if got.Name != "Acme Corp" {
		t.Errorf("Name = %q, want %q", got.Name, "Acme Corp")
	}
	if want := decimal.RequireFromString("123.45"); !got.Value.Equal(want) {
		t.Errorf("Value = %v, want %v", got.Value, want)
	}
	if got.Change != "0.70%" {
		t.Errorf("Change = %q, want %q", got.Change, "0.70%")
	}
	if want := date.New(2022, time.March, 5); got.Date != want {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if got.Currency != "USD" {
		t.Errorf("Currency = %q, want %q", got.Currency, "USD")
	}
	if got.ISIN != "US0000000001" {
		t.Errorf("ISIN = %q, want %q", got.ISIN, "US0000000001")
	}
	if got.Kind != KindStock {
		t.Errorf("Kind = %q, want %q", got.Kind, KindStock)
	}
}

func TestStockPageExtractPenceQuote(t *testing.T) {
	html := `<html><body>
<span class="securityName">Acme PLC</span>
<span id="Col0Price">4,076.00</span>
<span id="Col0PriceDetail">-12.00|-0.29%</span>
<p id="Col0PriceTime">As of 05/03/2022 16:35 UTC+00:00 | GBX  Minimum 15 minute delay</p>
<table><tr><td id="Col0Isin">GB00B0000001</td></tr></table>
</body></html>`

	got, err := (&StockPage{}).Extract(mustDoc(t, html), stockURL)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if want := decimal.RequireFromString("4076.00"); !got.Value.Equal(want) {
		t.Errorf("Value = %v, want %v", got.Value, want)
	}
	if got.Currency != "GBX" {
		t.Errorf("Currency = %q, want %q", got.Currency, "GBX")
	}
	if got.Change != "-0.29%" {
		t.Errorf("Change = %q, want %q", got.Change, "-0.29%")
	}
}

func TestStockPageExtractMissingPieces(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no security name", `<html><body><span id="Col0Price">1.0</span></body></html>`},
		{
			"no price",
			`<html><body><span class="securityName">Acme</span></body></html>`,
		},
		{
			"price not a number",
			`<html><body>
<span class="securityName">Acme</span>
<span id="Col0Price">n/a</span>
<span id="Col0PriceDetail">0|0%</span>
<p id="Col0PriceTime">As of 05/03/2022 | USD</p>
<td id="Col0Isin">US1</td>
</body></html>`,
		},
		{
			"price time without currency",
			`<html><body>
<span class="securityName">Acme</span>
<span id="Col0Price">1.0</span>
<span id="Col0PriceDetail">0|0%</span>
<p id="Col0PriceTime">As of 05/03/2022 17:35</p>
<td id="Col0Isin">US1</td>
</body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&StockPage{}).Extract(mustDoc(t, tt.html), stockURL)
			if err == nil {
				t.Fatal("Extract succeeded, want *fetch.ParseError")
			}
			var parseErr *fetch.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error = %T (%v), want *fetch.ParseError", err, err)
			}
		})
	}
}
