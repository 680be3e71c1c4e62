package security

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aliciawyy/MorningScraper/date"
	"github.com/aliciawyy/MorningScraper/fetch"
)

// FundPage extracts valuations from fund snapshot pages.
type FundPage struct{}

// CanHandle matches fund snapshot URLs.
func (p *FundPage) CanHandle(url string) bool {
	return strings.Contains(url, "/uk/funds/snapshot/snapshot")
}

// Extract reads the fund name from the title box and the NAV, Day Change
// and ISIN rows from the key stats table.
func (p *FundPage) Extract(doc *goquery.Document, url string) (*Valuation, error) {
	valuation := &Valuation{Kind: KindFund, URL: url}

	title := doc.Find("div.snapshotTitleBox h1")
	if title.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "fund page without a title box"}
	}
	valuation.Name = strings.TrimSpace(title.First().Text())

	table := doc.Find("table.overviewKeyStatsTable")
	if table.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "fund page without a key stats table"}
	}

	var (
		navDate    string
		navAmount  string
		haveNAV    bool
		haveChange bool
		haveISIN   bool
	)
	table.First().Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != 3 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		value := strings.TrimSpace(cells.Eq(2).Text())
		switch {
		case strings.HasPrefix(label, "NAV"):
			if span := cells.Eq(0).Find("span"); span.Length() > 0 {
				navDate = strings.TrimSpace(span.First().Text())
			}
			navAmount = value
			haveNAV = true
		case strings.HasPrefix(label, "Day Change"):
			valuation.Change = value
			haveChange = true
		case strings.HasPrefix(label, "ISIN"):
			valuation.ISIN = value
			haveISIN = true
		}
	})
	if !haveNAV || !haveChange || !haveISIN {
		return nil, &fetch.ParseError{URL: url, Detail: "fund key stats table is missing its NAV, Day Change or ISIN row"}
	}

	currency, amount, err := splitAmount(navAmount)
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "unreadable NAV " + strconv.Quote(navAmount), Err: err}
	}
	valuation.Currency = currency
	valuation.Value = amount

	on, err := date.ParseDMY(navDate)
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "unreadable NAV date", Err: err}
	}
	valuation.Date = on

	return valuation, nil
}
