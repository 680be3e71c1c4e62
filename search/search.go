// Package search finds instruments on the site and aggregates their
// valuations. It is the public surface of the scraper: free-text search,
// bulk valuation and single-URL resolution.
package search

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/aliciawyy/MorningScraper/config"
	"github.com/aliciawyy/MorningScraper/fetch"
	"github.com/aliciawyy/MorningScraper/security"
)

// Candidate is one instrument row from a search results page. Stock rows
// carry a ticker and currency; fund and ETF rows carry an ISIN.
type Candidate struct {
	Name     string        `json:"name"`
	URL      string        `json:"url"`
	Kind     security.Kind `json:"type"`
	Ticker   string        `json:"ticker,omitempty"`
	Currency string        `json:"currency,omitempty"`
	ISIN     string        `json:"isin,omitempty"`
}

// Service searches the site and resolves candidates into valuations.
type Service struct {
	site        config.Site
	fetcher     fetch.Fetcher
	securities  *security.Service
	concurrency int
	log         *zap.Logger
}

// NewService wires the search service to a fetcher and a security resolver.
func NewService(cfg *config.Config, fetcher fetch.Fetcher, securities *security.Service, logger *zap.Logger) *Service {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		site:        cfg.Site,
		fetcher:     fetcher,
		securities:  securities,
		concurrency: concurrency,
		log:         logger,
	}
}

// Search queries the site's search endpoint and returns every candidate the
// results page lists: stock rows first, then the rows of whichever fund or
// ETF table the page rendered.
func (s *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	searchURL := s.site.SearchURL(query)
	doc, err := s.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	candidates, err := extractCandidates(doc, s.site, searchURL)
	if err != nil {
		return nil, err
	}
	s.log.Info("search complete", zap.String("query", query), zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// GetURL validates that rawURL belongs to the site and resolves the page
// behind it. It returns (nil, nil) when the page holds no valuation data.
// The host check runs before anything is fetched.
func (s *Service) GetURL(ctx context.Context, rawURL string) (*security.Valuation, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &DomainError{URL: rawURL, Domain: s.site.Domain}
	}
	host := parsed.Hostname()
	if !s.site.Owns(host) {
		return nil, &DomainError{URL: rawURL, Host: host, Domain: s.site.Domain}
	}
	return s.securities.Resolve(ctx, rawURL)
}

// GetData searches for query and resolves every candidate into a valuation,
// preserving candidate order. Candidates whose pages hold no valuation data
// are skipped; any real error aborts the whole call.
func (s *Service) GetData(ctx context.Context, query string) ([]security.Valuation, error) {
	candidates, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.concurrency <= 1 {
		return s.resolveSequential(ctx, candidates)
	}
	return s.resolveParallel(ctx, candidates)
}

func (s *Service) resolveSequential(ctx context.Context, candidates []Candidate) ([]security.Valuation, error) {
	valuations := make([]security.Valuation, 0, len(candidates))
	for _, candidate := range candidates {
		valuation, err := s.GetURL(ctx, candidate.URL)
		if err != nil {
			return nil, err
		}
		if valuation == nil {
			s.log.Debug("candidate without valuation data", zap.String("url", candidate.URL))
			continue
		}
		valuations = append(valuations, *valuation)
	}
	return valuations, nil
}

// resolveParallel fans candidate resolution out over a bounded set of
// workers while keeping the output in candidate order.
func (s *Service) resolveParallel(ctx context.Context, candidates []Candidate) ([]security.Valuation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resolved := make([]*security.Valuation, len(candidates))
	sem := make(chan struct{}, s.concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			defer func() { <-sem }()

			valuation, err := s.GetURL(ctx, pageURL)
			if err != nil {
				fail(err)
				return
			}
			resolved[i] = valuation
		}(i, candidate.URL)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	valuations := make([]security.Valuation, 0, len(candidates))
	for _, valuation := range resolved {
		if valuation == nil {
			continue
		}
		valuations = append(valuations, *valuation)
	}
	return valuations, nil
}
