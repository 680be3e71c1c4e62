package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/aliciawyy/MorningScraper/date"
	"github.com/aliciawyy/MorningScraper/fetch"
)

const fundPageHTML = `<html><body>
<div class="snapshotTitleBox"><h1>Acme UK Growth Fund Class A Acc</h1></div>
<div class="snapshotContent">
<table class="overviewKeyStatsTable">
<tr><td class="titleBarHeading" colspan="3">Overview</td></tr>
<tr><td class="line heading">NAV<span class="heading"> 05/03/2022</span></td><td class="line"> </td><td class="line text">GBP 1.2345</td></tr>
<tr><td class="line heading">Day Change</td><td class="line"> </td><td class="line text">-0.23%</td></tr>
<tr><td class="line heading">Morningstar Category</td><td class="line"> </td><td class="line text">UK Large-Cap Equity</td></tr>
<tr><td class="line heading">ISIN</td><td class="line"> </td><td class="line text">GB00B54RK123</td></tr>
</table>
</div>
</body></html>`

const fundURL = "http://www.morningstar.co.uk/uk/funds/snapshot/snapshot.aspx?id=F00000ACME"

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to build document: %v", err)
	}
	return doc
}

func TestFundPageCanHandle(t *testing.T) {
	p := &FundPage{}
	if !p.CanHandle(fundURL) {
		t.Errorf("CanHandle(%q) = false, want true", fundURL)
	}
	if p.CanHandle("http://www.morningstar.co.uk/uk/stockreport/default.aspx") {
		t.Error("CanHandle matched a stock report URL")
	}
}

func TestFundPageExtract(t *testing.T) {
	got, err := (&FundPage{}).Extract(mustDoc(t, fundPageHTML), fundURL)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if got.Name != "Acme UK Growth Fund Class A Acc" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.ISIN != "GB00B54RK123" {
		t.Errorf("ISIN = %q, want %q", got.ISIN, "GB00B54RK123")
	}
	if want := date.New(2022, time.March, 5); got.Date != want {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if want := decimal.RequireFromString("1.2345"); !got.Value.Equal(want) {
		t.Errorf("Value = %v, want %v", got.Value, want)
	}
	if got.Currency != "GBP" {
		t.Errorf("Currency = %q, want %q", got.Currency, "GBP")
	}
	if got.Change != "-0.23%" {
		t.Errorf("Change = %q, want %q", got.Change, "-0.23%")
	}
	if got.Kind != KindFund {
		t.Errorf("Kind = %q, want %q", got.Kind, KindFund)
	}
	if got.URL != fundURL {
		t.Errorf("URL = %q, want %q", got.URL, fundURL)
	}
}

func TestFundPageExtractMissingRows(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			"no title box",
			`<html><body><table class="overviewKeyStatsTable"></table></body></html>`,
		},
		{
			"no key stats table",
			`<html><body><div class="snapshotTitleBox"><h1>Acme</h1></div></body></html>`,
		},
		{
			"isin row missing",
			`<html><body>
<div class="snapshotTitleBox"><h1>Acme</h1></div>
<table class="overviewKeyStatsTable">
<tr><td>NAV<span> 05/03/2022</span></td><td> </td><td>GBP 1.23</td></tr>
<tr><td>Day Change</td><td> </td><td>0.10%</td></tr>
</table>
</body></html>`,
		},
		{
			"nav value unsplittable",
			`<html><body>
<div class="snapshotTitleBox"><h1>Acme</h1></div>
<table class="overviewKeyStatsTable">
<tr><td>NAV<span> 05/03/2022</span></td><td> </td><td>1.23</td></tr>
<tr><td>Day Change</td><td> </td><td>0.10%</td></tr>
<tr><td>ISIN</td><td> </td><td>GB00B54RK123</td></tr>
</table>
</body></html>`,
		},
		{
			"nav date not dd/mm/yyyy",
			`<html><body>
<div class="snapshotTitleBox"><h1>Acme</h1></div>
<table class="overviewKeyStatsTable">
<tr><td>NAV<span> 2022-03-05</span></td><td> </td><td>GBP 1.23</td></tr>
<tr><td>Day Change</td><td> </td><td>0.10%</td></tr>
<tr><td>ISIN</td><td> </td><td>GB00B54RK123</td></tr>
</table>
</body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&FundPage{}).Extract(mustDoc(t, tt.html), fundURL)
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

func TestFundPageExtractBadDateUnwrapsFormatError(t *testing.T) {
	html := `<html><body>
<div class="snapshotTitleBox"><h1>Acme</h1></div>
<table class="overviewKeyStatsTable">
<tr><td>NAV<span> 31/02/2023</span></td><td> </td><td>GBP 1.23</td></tr>
<tr><td>Day Change</td><td> </td><td>0.10%</td></tr>
<tr><td>ISIN</td><td> </td><td>GB00B54RK123</td></tr>
</table>
</body></html>`

	_, err := (&FundPage{}).Extract(mustDoc(t, html), fundURL)
	var formatErr *date.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("error = %v, want wrapped *date.FormatError", err)
	}
	if formatErr.Input != "31/02/2023" {
		t.Errorf("FormatError.Input = %q, want %q", formatErr.Input, "31/02/2023")
	}
}
