package wiki

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// articleHTML renders a page large enough to pass the placeholder filter.
func articleHTML(heading string) string {
	return fmt.Sprintf(`<html><head><title>%s</title></head><body>
<h1 id="firstHeading"><span class="mw-page-title-main">%s</span></h1>
<p>%s</p>
</body></html>`, heading, heading, strings.Repeat("Mission narrative. ", 200))
}

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]Page
	errs    map[string]error
	visited []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]Page{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Get(_ context.Context, _ string, url string) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited = append(f.visited, url)
	if err, ok := f.errs[url]; ok {
		return Page{}, err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return Page{URL: url, StatusCode: 404, Body: []byte("missing")}, nil
}

func (f *fakeFetcher) article(url, heading string) {
	f.pages[url] = Page{URL: url, StatusCode: 200, Body: []byte(articleHTML(heading))}
}

var errBoom = errors.New("boom")
