package wiki

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/mission-scraper/internal/htmltext"
)

// ErrNotFound is returned when no candidate article validates against the
// requested mission.
var ErrNotFound = errors.New("no mission page resolved")

// Resolution is a validated article for a mission.
type Resolution struct {
	Title  string
	URL    string
	Markup string
}

// ResolverConfig configures article lookup.
type ResolverConfig struct {
	// BaseURL is the article-by-title prefix, e.g. https://en.wikipedia.org/wiki/.
	BaseURL string
	// MinBodyBytes rejects near-empty placeholder pages. The body length is
	// counted in characters.
	MinBodyBytes int
}

// Resolver maps free-text mission names to articles.
type Resolver struct {
	cfg      ResolverConfig
	fetcher  PageFetcher
	matcher  TitleMatcher
	searcher *Searcher
	logger   *zap.Logger
}

// NewResolver builds a Resolver. searcher may be nil to disable the search fallback.
func NewResolver(cfg ResolverConfig, fetcher PageFetcher, matcher TitleMatcher, searcher *Searcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cfg:      cfg,
		fetcher:  fetcher,
		matcher:  matcher,
		searcher: searcher,
		logger:   logger,
	}
}

// Resolve tries direct title variants first, then ranked search results.
// Transport errors are returned as-is; a miss yields ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, mission string) (Resolution, error) {
	for _, variant := range titleVariants(mission) {
		target := articleURL(r.cfg.BaseURL, variant)
		page, err := r.fetcher.Get(ctx, KindArticle, target)
		if err != nil {
			return Resolution{}, fmt.Errorf("fetch %q: %w", variant, err)
		}
		if !page.OK(r.cfg.MinBodyBytes) {
			r.logger.Debug("Variant rejected",
				zap.String("variant", variant),
				zap.Int("status", page.StatusCode),
				zap.Int("bytes", len(page.Body)))
			continue
		}
		title, ok := pageHeading(page.Body)
		if !ok {
			title = variant
		}
		if r.matcher.Matches(title, mission) {
			return Resolution{Title: title, URL: target, Markup: string(page.Body)}, nil
		}
		r.logger.Debug("Heading does not match mission",
			zap.String("variant", variant),
			zap.String("heading", title))
	}

	if r.searcher == nil {
		return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, mission)
	}
	candidates, err := r.searcher.Search(ctx, mission)
	if err != nil {
		return Resolution{}, err
	}
	for _, title := range candidates {
		if !r.matcher.Matches(title, mission) {
			continue
		}
		target := articleURL(r.cfg.BaseURL, strings.ReplaceAll(title, " ", "_"))
		page, err := r.fetcher.Get(ctx, KindArticle, target)
		if err != nil {
			return Resolution{}, fmt.Errorf("fetch %q: %w", title, err)
		}
		if page.OK(r.cfg.MinBodyBytes) {
			return Resolution{Title: title, URL: target, Markup: string(page.Body)}, nil
		}
	}
	return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, mission)
}

// pageHeading returns the text of the first <h1>. ok is false when the page
// has no <h1>; an empty heading is still reported as present.
func pageHeading(body []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return "", false
	}
	return htmltext.Text(h1), true
}
