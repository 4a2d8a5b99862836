// Package infobox extracts mission facts from an article's summary table.
package infobox

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/mission-scraper/internal/htmltext"
)

// Fields holds the six values pulled from an infobox. Missing values are
// empty strings.
type Fields struct {
	LaunchSite  string
	Destination string
	LaunchDate  string
	Duration    string
	LandingSite string
	Rocket      string
}

// IsZero reports whether nothing was extracted.
func (f Fields) IsZero() bool {
	return f == Fields{}
}

// labels is an exact-match list tried first and a substring list tried when
// no exact label is present.
type labels struct {
	exact     []string
	substring []string
}

var (
	launchSiteLabels  = labels{exact: []string{"launch site"}, substring: []string{"launch location", "launch base"}}
	landingSiteLabels = labels{exact: []string{"landing site"}, substring: []string{"splashdown site", "recovery site", "landing"}}
	launchDateLabels  = labels{exact: []string{"launch date"}, substring: []string{"launch date and time", "date and time", "launch"}}
	durationLabels    = labels{exact: []string{"mission duration"}, substring: []string{"duration"}}
	rocketLabels      = labels{exact: []string{"rocket"}, substring: []string{"launch vehicle", "carrier rocket"}}
	destinationLabels = labels{exact: []string{"space station", "destination"}, substring: []string{"docked with", "space station", "visited"}}
)

// massUnit flags values that were lifted from a mass row by mistake.
var massUnit = regexp.MustCompile(`(?i)\b(kg|kilogram|kilograms|lb|pounds?)\b`)

// DefaultFacilityKeywords name launch facilities specific enough that
// coordinates add nothing once the site text is also comma-qualified.
var DefaultFacilityKeywords = []string{
	"Cosmodrome", "Kennedy", "Canaveral", "Baikonur", "Jiuquan", "Tanegashima", "Xichang",
}

// Config tunes the extractor.
type Config struct {
	// MaxRows caps the fallback scan of nested rows.
	MaxRows int
	// FacilityKeywords suppress coordinate coalescing; see Coalesce.
	FacilityKeywords []string
}

// Extractor parses article markup.
type Extractor struct {
	maxRows  int
	keywords []string
}

// New builds an Extractor, filling unset config with defaults.
func New(cfg Config) *Extractor {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 60
	}
	if len(cfg.FacilityKeywords) == 0 {
		cfg.FacilityKeywords = DefaultFacilityKeywords
	}
	return &Extractor{maxRows: cfg.MaxRows, keywords: cfg.FacilityKeywords}
}

// Extract returns the infobox fields of markup. A page without a
// table.infobox yields zero Fields and no error.
func (e *Extractor) Extract(markup string) (Fields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Fields{}, fmt.Errorf("parse markup: %w", err)
	}
	table := doc.Find("table.infobox").First()
	if table.Length() == 0 {
		return Fields{}, nil
	}
	rows := e.rows(table)

	launchDate, _ := rows.lookup(launchDateLabels)
	launchSite, launchCell := rows.lookup(launchSiteLabels)
	landingSite, landingCell := rows.lookup(landingSiteLabels)
	duration, _ := rows.lookup(durationLabels)
	rocket, _ := rows.lookup(rocketLabels)
	destination, _ := rows.lookup(destinationLabels)

	return Fields{
		LaunchSite:  Coalesce(launchSite, coordinates(launchCell), e.keywords),
		Destination: destination,
		LaunchDate:  dropMass(launchDate),
		Duration:    dropMass(duration),
		LandingSite: Coalesce(dropMass(landingSite), coordinates(landingCell), e.keywords),
		Rocket:      rocket,
	}, nil
}

type row struct {
	key   string
	value *goquery.Selection
}

type rowSet []row

// rows prefers <tr> elements directly under the table body and falls back to
// a capped scan of every nested row.
func (e *Extractor) rows(table *goquery.Selection) rowSet {
	container := table.ChildrenFiltered("tbody").First()
	if container.Length() == 0 {
		container = table
	}
	trs := container.ChildrenFiltered("tr")
	if trs.Length() == 0 {
		trs = table.Find("tr")
		if trs.Length() > e.maxRows {
			trs = trs.Slice(0, e.maxRows)
		}
	}

	set := make(rowSet, 0, trs.Length())
	trs.Each(func(_ int, tr *goquery.Selection) {
		td := tr.Find("td").First()
		if td.Length() == 0 {
			return
		}
		key := ""
		if th := tr.Find("th").First(); th.Length() > 0 {
			key = strings.ToLower(htmltext.Clean(htmltext.Text(th)))
		}
		set = append(set, row{key: key, value: td})
	})
	return set
}

// lookup returns the cleaned value of the first row whose label matches
// exactly, then the first whose label contains a substring variant.
func (rs rowSet) lookup(l labels) (string, *goquery.Selection) {
	if value, cell := rs.find(l.exact, func(key, label string) bool { return key == label }); value != "" {
		return value, cell
	}
	return rs.find(l.substring, strings.Contains)
}

func (rs rowSet) find(variants []string, match func(key, label string) bool) (string, *goquery.Selection) {
	for _, r := range rs {
		for _, label := range variants {
			if match(r.key, label) {
				return htmltext.Clean(htmltext.Text(r.value)), r.value
			}
		}
	}
	return "", nil
}

func dropMass(value string) string {
	if massUnit.MatchString(value) {
		return ""
	}
	return value
}

// coordinates returns the machine-readable ".geo" span text in cell, if any.
func coordinates(cell *goquery.Selection) string {
	if cell == nil {
		return ""
	}
	geo := cell.Find(".geo").First()
	if geo.Length() == 0 {
		return ""
	}
	return htmltext.Clean(htmltext.Text(geo))
}

// Coalesce merges a site name with its coordinates as "site (coords)". The
// coordinates are left off when the site is both comma-qualified and names a
// well-known facility. With only one of the two present, that one is returned.
func Coalesce(site, coords string, facilityKeywords []string) string {
	if site != "" && coords != "" && (!strings.Contains(site, ",") || !containsAny(site, facilityKeywords)) {
		return site + " (" + coords + ")"
	}
	if site != "" {
		return site
	}
	return coords
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
