// Package browser provides a headless-browser page fetcher for pages that
// only render their data through JavaScript.
package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/aliciawyy/MorningScraper/config"
	"github.com/aliciawyy/MorningScraper/fetch"
)

// Pool keeps a fixed set of prewarmed browser contexts and fetches pages by
// navigating one of them. It satisfies fetch.Fetcher so the rest of the
// scraper does not care which backend retrieved a page.
type Pool struct {
	contexts    chan context.Context
	cancelFuncs map[context.Context]context.CancelFunc
	mu          sync.Mutex
	allocCancel context.CancelFunc
	timeout     time.Duration
	log         *zap.Logger
}

var _ fetch.Fetcher = (*Pool)(nil)

// NewPool starts cfg.PoolSize headless browser contexts and navigates each
// to about:blank so the first real fetch does not pay the startup cost.
func NewPool(cfg *config.Config, logger *zap.Logger) (*Pool, error) {
	size := cfg.PoolSize
	if size < 1 {
		size = 1
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	pool := &Pool{
		contexts:    make(chan context.Context, size),
		cancelFuncs: make(map[context.Context]context.CancelFunc, size),
		allocCancel: allocCancel,
		timeout:     cfg.Timeout,
		log:         logger,
	}

	for i := 0; i < size; i++ {
		ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
			// Silent logging
		}))

		chromedp.ListenTarget(ctx, func(ev interface{}) {
			switch ev.(type) {
			case *page.EventFrameStartedNavigating:
				// Silent handling
			}
		})

		if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
			cancel()
			pool.Close()
			return nil, &fetch.FetchError{URL: "about:blank", Err: err}
		}

		pool.contexts <- ctx
		pool.cancelFuncs[ctx] = cancel
	}

	logger.Info("browser pool started", zap.Int("size", size))
	return pool, nil
}

// Fetch implements fetch.Fetcher by rendering the page in a pooled browser
// and parsing the rendered HTML.
func (pool *Pool) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var browserCtx context.Context
	select {
	case browserCtx = <-pool.contexts:
	case <-ctx.Done():
		return nil, &fetch.FetchError{URL: url, Err: ctx.Err()}
	}
	defer pool.release(browserCtx)

	runCtx := browserCtx
	if pool.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(browserCtx, pool.timeout)
		defer cancel()
	}

	pool.log.Debug("rendering page", zap.String("url", url))
	var htmlContent string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(1000*time.Millisecond),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &fetch.FetchError{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &fetch.ParseError{URL: url, Detail: "rendered page is not parseable HTML", Err: err}
	}
	return doc, nil
}

// release clears the browser state and puts the context back in the pool.
func (pool *Pool) release(browserCtx context.Context) {
	refreshCtx, cancel := context.WithTimeout(browserCtx, 3*time.Second)
	defer cancel()

	_ = chromedp.Run(refreshCtx,
		network.ClearBrowserCookies(),
		chromedp.Navigate("about:blank"),
	)

	pool.contexts <- browserCtx
}

// Close shuts down every browser context and the allocator.
func (pool *Pool) Close() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	for ctx, cancel := range pool.cancelFuncs {
		cancel()
		delete(pool.cancelFuncs, ctx)
	}
	pool.allocCancel()

	for len(pool.contexts) > 0 {
		<-pool.contexts
	}
}
