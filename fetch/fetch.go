// Package fetch retrieves pages and parses them into goquery documents.
package fetch

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/aliciawyy/MorningScraper/config"
)

// Fetcher retrieves the page at url and parses it into a document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Client fetches pages over plain HTTP. A shared rate limiter keeps the
// request rate polite regardless of how many goroutines fetch at once.
type Client struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       *zap.Logger
}

var _ Fetcher = (*Client)(nil)

// NewClient creates an HTTP page fetcher configured from cfg.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &Client{
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: cfg.UserAgent,
		log:       logger,
	}
}

// Fetch downloads url and parses the response body.
func (c *Client) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	c.log.Debug("fetching page", zap.String("url", url))
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		defer reader.Close()
	case "deflate":
		reader = flate.NewReader(resp.Body)
		defer reader.Close()
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, &FetchError{URL: url, Err: err}
		}
		defer zr.Close()
		reader = zr.IOReadCloser()
	default:
		reader = resp.Body
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, &ParseError{URL: url, Detail: "response body is not parseable HTML", Err: err}
	}
	return doc, nil
}
