// Package wiki resolves mission names to encyclopedia articles. It fetches
// pages with Colly, validates titles with mission.Matcher and falls back to
// the search API when no direct title lookup succeeds.
package wiki

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly/v2"
)

// Fetch kinds used for metrics labels.
const (
	KindArticle = "article"
	KindSearch  = "search"
)

// Page is a fetched HTTP response. Non-2xx responses are returned as pages,
// not errors; only transport failures produce an error.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the page carries a success status and a body longer
// than minChars characters, filtering out placeholder pages.
func (p Page) OK(minChars int) bool {
	return p.StatusCode == http.StatusOK && utf8.RuneCount(p.Body) > minChars
}

// Waiter paces outgoing requests.
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// FetchObserver records fetch outcomes.
type FetchObserver interface {
	ObserveFetch(kind, rawURL string, code, bodyBytes int, duration time.Duration)
}

// FetcherConfig controls collector behavior.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs single synchronous GETs using the Colly collector.
type Fetcher struct {
	cfg           FetcherConfig
	baseCollector *colly.Collector
	waiter        Waiter
	observer      FetchObserver
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// NewFetcher builds a Fetcher. waiter and observer may be nil.
func NewFetcher(cfg FetcherConfig, waiter Waiter, observer FetchObserver) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	// 404s on guessed titles are expected and must reach OnResponse.
	c.ParseHTTPErrorResponse = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		waiter:        waiter,
		observer:      observer,
	}
}

// Get fetches url. kind labels the request for metrics.
func (f *Fetcher) Get(ctx context.Context, kind, url string) (Page, error) {
	if f.waiter != nil {
		if err := f.waiter.Wait(ctx, url); err != nil {
			return Page{}, err
		}
	}

	var (
		page     Page
		fetchErr error
	)
	start := time.Now()
	collector := f.buildCollector()
	f.configureCollectorHooks(collector, start, &page, &fetchErr)

	if err := f.runCollector(ctx, collector, url, &fetchErr); err != nil {
		f.observe(kind, url, Page{}, start)
		return Page{}, err
	}
	f.observe(kind, url, page, start)
	return page, nil
}

func (f *Fetcher) buildCollector() *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.ParseHTTPErrorResponse = true
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	return collector
}

func (f *Fetcher) observe(kind, url string, page Page, start time.Time) {
	if f.observer == nil {
		return
	}
	f.observer.ObserveFetch(kind, url, page.StatusCode, len(page.Body), time.Since(start))
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	start time.Time,
	page *Page,
	fetchErr *error,
) {
	hooks.OnResponse(func(r *colly.Response) {
		*page = Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		*fetchErr = err
	})
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
}
