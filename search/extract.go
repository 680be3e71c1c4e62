package search

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aliciawyy/MorningScraper/config"
	"github.com/aliciawyy/MorningScraper/fetch"
	"github.com/aliciawyy/MorningScraper/security"
)

// Result table ids on the search results page. The stock table always
// contributes rows when present; the fund and ETF tables are mutually
// exclusive, so only the first one present is read.
const (
	stockTableID = "ctl00_MainContent_stockTable"
	fundTableID  = "ctl00_MainContent_fundTable"
	etfTableID   = "ctl00_MainContent_etfTable"
)

// isinTables are checked in order after the stock table.
var isinTables = []struct {
	kind    security.Kind
	tableID string
}{
	{security.KindFund, fundTableID},
	{security.KindETF, etfTableID},
}

// extractCandidates reads every candidate row out of a search results page.
// A page with none of the known tables yields an empty slice, which is how
// the site renders a search without matches.
func extractCandidates(doc *goquery.Document, site config.Site, pageURL string) ([]Candidate, error) {
	candidates := make([]Candidate, 0)

	if table := doc.Find("table#" + stockTableID); table.Length() > 0 {
		err := forEachDataRow(table.First(), func(tr *goquery.Selection) error {
			candidate, err := parseStockRow(tr, site, pageURL)
			if err != nil {
				return err
			}
			candidates = append(candidates, candidate)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, family := range isinTables {
		table := doc.Find("table#" + family.tableID)
		if table.Length() == 0 {
			continue
		}
		err := forEachDataRow(table.First(), func(tr *goquery.Selection) error {
			candidate, err := parseISINRow(tr, family.kind, site, pageURL)
			if err != nil {
				return err
			}
			candidates = append(candidates, candidate)
			return nil
		})
		if err != nil {
			return nil, err
		}
		break
	}

	return candidates, nil
}

// forEachDataRow walks the rows of a results table, skipping the header row,
// and stops at the first row error.
func forEachDataRow(table *goquery.Selection, fn func(tr *goquery.Selection) error) error {
	var err error
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i == 0 {
			return true // header row
		}
		err = fn(tr)
		return err == nil
	})
	return err
}

// parseStockRow reads the name link, ticker and currency cells out of one
// stock results row.
func parseStockRow(tr *goquery.Selection, site config.Site, pageURL string) (Candidate, error) {
	nameCell := tr.Find("td").First()
	if nameCell.Length() == 0 {
		return Candidate{}, &fetch.ParseError{URL: pageURL, Detail: "stock result row without cells"}
	}
	href, ok := nameCell.Find("a").First().Attr("href")
	if !ok {
		return Candidate{}, &fetch.ParseError{URL: pageURL, Detail: "stock result row without a link"}
	}

	ticker := tr.Find("td.searchTicker")
	if ticker.Length() == 0 {
		return Candidate{}, &fetch.ParseError{URL: pageURL, Detail: "stock result row without a ticker cell"}
	}
	currency := tr.Find("td.searchCurrency")
	if currency.Length() == 0 {
		return Candidate{}, &fetch.ParseError{URL: pageURL, Detail: "stock result row without a currency cell"}
	}

	return Candidate{
		Name:     strings.TrimSpace(nameCell.Text()),
		URL:      site.FixURL(href),
		Kind:     security.KindStock,
		Ticker:   strings.TrimSpace(ticker.First().Text()),
		Currency: strings.TrimSpace(currency.First().Text()),
	}, nil
}

// parseISINRow reads the name link and ISIN cells out of one fund or ETF
// results row.
func parseISINRow(tr *goquery.Selection, kind security.Kind, site config.Site, pageURL string) (Candidate, error) {
	cells := tr.Find("td")
	if cells.Length() < 2 {
		return Candidate{}, &fetch.ParseError{
			URL:    pageURL,
			Detail: fmt.Sprintf("%s result row with %d cells, want at least 2", strings.ToLower(string(kind)), cells.Length()),
		}
	}
	nameCell := cells.Eq(0)
	href, ok := nameCell.Find("a").First().Attr("href")
	if !ok {
		return Candidate{}, &fetch.ParseError{
			URL:    pageURL,
			Detail: strings.ToLower(string(kind)) + " result row without a link",
		}
	}

	return Candidate{
		Name: strings.TrimSpace(nameCell.Text()),
		URL:  site.FixURL(href),
		Kind: kind,
		ISIN: strings.TrimSpace(cells.Eq(1).Text()),
	}, nil
}
