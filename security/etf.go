package security

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aliciawyy/MorningScraper/date"
	"github.com/aliciawyy/MorningScraper/fetch"
)

// ETFPage extracts valuations from ETF snapshot pages. These share the
// snapshot layout of fund pages but render their key stats as label rows
// with the name and ticker joined in the title.
type ETFPage struct{}

// CanHandle matches ETF snapshot URLs.
func (p *ETFPage) CanHandle(url string) bool {
	return strings.Contains(url, "/uk/etf/")
}

// Extract reads the title box and the Closing Price, Day Change, Exchange
// and ISIN label rows. Exchange is optional; everything else is required.
func (p *ETFPage) Extract(doc *goquery.Document, url string) (*Valuation, error) {
	valuation := &Valuation{Kind: KindETF, URL: url}

	title := doc.Find("div.snapshotTitleBox h1")
	if title.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "etf page without a title box"}
	}
	parts := strings.Split(title.First().Text(), "|")
	valuation.Name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		valuation.Ticker = strings.TrimSpace(parts[1])
	}

	if row := findLabelRow(doc, "Exchange"); row != nil {
		valuation.Exchange = rowValue(row)
	}

	isinRow := findLabelRow(doc, "ISIN")
	if isinRow == nil {
		return nil, &fetch.ParseError{URL: url, Detail: "etf page without an ISIN row"}
	}
	valuation.ISIN = rowValue(isinRow)

	priceRow := findLabelRow(doc, "Closing Price")
	if priceRow == nil {
		return nil, &fetch.ParseError{URL: url, Detail: "etf page without a closing price row"}
	}
	priceText := rowValue(priceRow)
	currency, amount, err := splitAmount(priceText)
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "unreadable closing price " + strconv.Quote(priceText), Err: err}
	}
	valuation.Currency = currency
	valuation.Value = amount

	dateText, ok := rowDate(priceRow)
	if !ok {
		return nil, &fetch.ParseError{URL: url, Detail: "closing price row without a date span"}
	}
	on, err := date.ParseDMY(dateText)
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "unreadable closing price date", Err: err}
	}
	valuation.Date = on

	changeRow := findLabelRow(doc, "Day Change")
	if changeRow == nil {
		return nil, &fetch.ParseError{URL: url, Detail: "etf page without a day change row"}
	}
	valuation.Change = rowValue(changeRow)

	return valuation, nil
}
