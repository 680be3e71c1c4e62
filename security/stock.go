package security

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/aliciawyy/MorningScraper/date"
	"github.com/aliciawyy/MorningScraper/fetch"
)

// StockPage extracts valuations from stock report pages.
type StockPage struct{}

var (
	// The price time line reads like "As of 25/12/2023 17:35 UTC | GBX ...".
	stockDateRe     = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	stockCurrencyRe = regexp.MustCompile(`\|\s([A-Z]{3,4})\b`)
)

// CanHandle matches stock report URLs.
func (p *StockPage) CanHandle(url string) bool {
	return strings.Contains(url, "/uk/stockreport/")
}

// Extract reads the quote header spans of a stock report page.
func (p *StockPage) Extract(doc *goquery.Document, url string) (*Valuation, error) {
	valuation := &Valuation{Kind: KindStock, URL: url}

	name := doc.Find("span.securityName")
	if name.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "stock page without a security name"}
	}
	valuation.Name = strings.TrimSpace(name.First().Text())

	price := doc.Find("span#Col0Price")
	if price.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "stock page without a price"}
	}
	priceText := strings.TrimSpace(price.First().Text())
	amount, err := decimal.NewFromString(strings.ReplaceAll(priceText, ",", ""))
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "unreadable price " + strconv.Quote(priceText), Err: err}
	}
	valuation.Value = amount

	detail := doc.Find("span#Col0PriceDetail")
	if detail.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "stock page without a price detail"}
	}
	parts := strings.Split(detail.First().Text(), "|")
	if len(parts) < 2 {
		return nil, &fetch.ParseError{URL: url, Detail: "price detail without a day change section"}
	}
	valuation.Change = strings.TrimSpace(parts[1])

	priceTime := doc.Find("p#Col0PriceTime")
	if priceTime.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "stock page without a price time line"}
	}
	timeText := priceTime.First().Text()

	dateText := stockDateRe.FindString(timeText)
	if dateText == "" {
		return nil, &fetch.ParseError{URL: url, Detail: "price time line without a dd/mm/yyyy date"}
	}
	on, err := date.ParseDMY(dateText)
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "unreadable price date", Err: err}
	}
	valuation.Date = on

	currency := stockCurrencyRe.FindStringSubmatch(timeText)
	if currency == nil {
		return nil, &fetch.ParseError{URL: url, Detail: "price time line without a currency code"}
	}
	valuation.Currency = currency[1]

	isin := doc.Find("td#Col0Isin")
	if isin.Length() == 0 {
		return nil, &fetch.ParseError{URL: url, Detail: "stock page without an ISIN cell"}
	}
	valuation.ISIN = strings.TrimSpace(isin.First().Text())

	return valuation, nil
}
