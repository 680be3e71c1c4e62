// Package security extracts valuation data from individual instrument pages.
// Each family of detail pages (funds, stocks, ETFs) has its own extractor;
// a registry dispatches on the page URL.
package security

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aliciawyy/MorningScraper/date"
	"github.com/aliciawyy/MorningScraper/fetch"
)

// Kind classifies a financial instrument.
type Kind string

const (
	KindStock Kind = "Stock"
	KindFund  Kind = "Fund"
	KindETF   Kind = "ETF"
)

// Valuation is the normalized per-instrument record read off a detail page.
type Valuation struct {
	Name     string          `json:"name"`
	ISIN     string          `json:"isin"`
	Date     date.Date       `json:"date"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
	Change   string          `json:"change"`
	Kind     Kind            `json:"type"`
	URL      string          `json:"url"`
	Ticker   string          `json:"ticker,omitempty"`
	Exchange string          `json:"exchange,omitempty"`
}

// Extractor turns one family of instrument detail pages into valuations.
type Extractor interface {
	// CanHandle reports whether the extractor recognizes the page at url.
	CanHandle(url string) bool

	// Extract reads the valuation out of a page this extractor handles.
	Extract(doc *goquery.Document, url string) (*Valuation, error)
}

// Registry holds the known page extractors in dispatch order.
type Registry struct {
	mu         sync.RWMutex
	extractors []Extractor
}

// NewRegistry returns a registry with the standard page extractors.
func NewRegistry() *Registry {
	registry := &Registry{}
	registry.Register(&FundPage{})
	registry.Register(&StockPage{})
	registry.Register(&ETFPage{})
	return registry
}

// Register appends an extractor to the dispatch order.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
}

// Find returns the first extractor that recognizes url, or nil when the
// page is not an instrument detail page.
func (r *Registry) Find(url string) Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.extractors {
		if e.CanHandle(url) {
			return e
		}
	}
	return nil
}

// Service fetches instrument pages and runs the matching extractor.
type Service struct {
	fetcher  fetch.Fetcher
	registry *Registry
	log      *zap.Logger
}

// NewService creates a resolver backed by the given fetcher. A nil registry
// means the standard extractors.
func NewService(fetcher fetch.Fetcher, registry *Registry, logger *zap.Logger) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{fetcher: fetcher, registry: registry, log: logger}
}

// Resolve fetches the page at url and extracts its valuation. A URL no
// extractor recognizes resolves to (nil, nil): the page exists but holds no
// valuation data. The URL is classified before anything is fetched.
func (s *Service) Resolve(ctx context.Context, url string) (*Valuation, error) {
	extractor := s.registry.Find(url)
	if extractor == nil {
		s.log.Debug("url is not an instrument page", zap.String("url", url))
		return nil, nil
	}

	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(doc, url)
}

// splitAmount splits a "CCY 1,234.56" pair into its currency code and
// amount. Thousands separators are tolerated.
func splitAmount(text string) (string, decimal.Decimal, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return "", decimal.Decimal{}, fmt.Errorf("want \"CCY amount\", got %q", text)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(fields[1], ",", ""))
	if err != nil {
		return "", decimal.Decimal{}, err
	}
	return fields[0], amount, nil
}

// findLabelRow returns the first table row whose first cell text starts
// with label, or nil when no row matches.
func findLabelRow(doc *goquery.Document, label string) *goquery.Selection {
	var row *goquery.Selection
	doc.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return true
		}
		if strings.HasPrefix(strings.TrimSpace(cells.First().Text()), label) {
			row = tr
			return false
		}
		return true
	})
	return row
}

// rowValue returns the trimmed text of the last cell of a label row.
func rowValue(tr *goquery.Selection) string {
	cells := tr.Find("td")
	return strings.TrimSpace(cells.Eq(cells.Length() - 1).Text())
}

// rowDate returns the text of the span tucked inside a label cell, which is
// where these pages render the as-of date.
func rowDate(tr *goquery.Selection) (string, bool) {
	span := tr.Find("td").First().Find("span")
	if span.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(span.First().Text()), true
}
