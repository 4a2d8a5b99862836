package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultBlocklist holds lowercase title fragments that mark list pages,
// fictional characters and unrelated articles returned by title search.
var DefaultBlocklist = []string{"t2", "synchronous optical", "list of", "fictional", "ulf merbold"}

const (
	scoreExact     = 100
	scorePattern   = 50
	scoreBlocked   = -100
	scoreThreshold = -50
)

// TitleMatcher decides whether a candidate title denotes a mission.
type TitleMatcher interface {
	Matches(title, mission string) bool
}

// PageFetcher fetches a URL.
type PageFetcher interface {
	Get(ctx context.Context, kind, url string) (Page, error)
}

// SearchConfig configures the search fallback.
type SearchConfig struct {
	APIURL    string
	Limit     int
	Blocklist []string
}

// Searcher queries the encyclopedia's title search and ranks the hits.
type Searcher struct {
	cfg     SearchConfig
	fetcher PageFetcher
	matcher TitleMatcher
}

// NewSearcher builds a Searcher. An empty blocklist falls back to DefaultBlocklist.
func NewSearcher(cfg SearchConfig, fetcher PageFetcher, matcher TitleMatcher) *Searcher {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if len(cfg.Blocklist) == 0 {
		cfg.Blocklist = DefaultBlocklist
	}
	blocklist := make([]string, 0, len(cfg.Blocklist))
	for _, term := range cfg.Blocklist {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			blocklist = append(blocklist, term)
		}
	}
	cfg.Blocklist = blocklist
	return &Searcher{cfg: cfg, fetcher: fetcher, matcher: matcher}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Search returns candidate titles for mission, best first. A non-success
// status from the API is an error.
func (s *Searcher) Search(ctx context.Context, mission string) ([]string, error) {
	page, err := s.fetcher.Get(ctx, KindSearch, s.queryURL(mission))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", mission, err)
	}
	if page.StatusCode < http.StatusOK || page.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("search %q: unexpected status %d", mission, page.StatusCode)
	}

	var resp searchResponse
	if err := json.Unmarshal(page.Body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	titles := make([]string, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		titles = append(titles, hit.Title)
	}
	return s.Rank(titles, mission), nil
}

func (s *Searcher) queryURL(mission string) string {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", `intitle:"`+mission+`"`)
	params.Set("srlimit", strconv.Itoa(s.cfg.Limit))
	params.Set("srnamespace", "0")
	params.Set("format", "json")
	return s.cfg.APIURL + "?" + params.Encode()
}

type scoredTitle struct {
	title string
	score int
}

// Rank orders titles by score, keeping the received order for ties, and
// drops titles scoring at or below the threshold.
func (s *Searcher) Rank(titles []string, mission string) []string {
	scored := make([]scoredTitle, 0, len(titles))
	for _, title := range titles {
		scored = append(scored, scoredTitle{title: title, score: s.score(title, mission)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	ranked := make([]string, 0, len(scored))
	for _, st := range scored {
		if st.score > scoreThreshold {
			ranked = append(ranked, st.title)
		}
	}
	return ranked
}

func (s *Searcher) score(title, mission string) int {
	score := 0
	lower := strings.ToLower(title)
	if lower == strings.ToLower(mission) {
		score += scoreExact
	}
	if s.matcher.Matches(title, mission) {
		score += scorePattern
	}
	for _, bad := range s.cfg.Blocklist {
		if strings.Contains(lower, bad) {
			score += scoreBlocked
			break
		}
	}
	return score
}
