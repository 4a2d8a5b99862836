package mission

import (
	"regexp"
	"strings"
)

// Family tags a crewed-program naming convention.
type Family string

// Recognized mission families, in evaluation order.
const (
	FamilyShuttle      Family = "sts"
	FamilyApollo       Family = "apollo"
	FamilyGemini       Family = "gemini"
	FamilyMercuryAtlas Family = "mercury-atlas"
	FamilySoyuz        Family = "soyuz"
	FamilyVostok       Family = "vostok"
	FamilyVoskhod      Family = "voskhod"
	FamilyShenzhou     Family = "shenzhou"
)

// Rule is the normalized form of a requested mission within one family:
// "Gemini 6A" becomes {gemini, "6", "A"}, "MA-6" becomes {mercury-atlas, "6", ""}.
type Rule struct {
	Family Family
	Number string
	Suffix string
}

// family pairs the pattern that recognizes a requested mission with the
// pattern a candidate title must satisfy. Both capture the flight number in
// group 1 and an optional letter suffix in group 2.
type family struct {
	tag     Family
	request *regexp.Regexp
	title   *regexp.Regexp
}

func programFamily(tag Family, name string) family {
	return family{
		tag:     tag,
		request: regexp.MustCompile(`(?i)^` + name + `[-\s_]*(\d+)()$`),
		title:   regexp.MustCompile(`(?i)^` + name + `[-\s_]?(\d+)()$`),
	}
}

func defaultFamilies() []family {
	return []family{
		programFamily(FamilyShuttle, "sts"),
		programFamily(FamilyApollo, "apollo"),
		{
			tag:     FamilyGemini,
			request: regexp.MustCompile(`(?i)^gemini[-\s_]*(\d+)([A-Za-z]?)$`),
			title:   regexp.MustCompile(`(?i)^gemini[-\s_]?(\d+)([A-Za-z]?)$`),
		},
		{
			tag:     FamilyMercuryAtlas,
			request: regexp.MustCompile(`(?i)^(?:mercury[-\s_]*atlas|ma)[-\s_]*(\d+)()$`),
			title:   regexp.MustCompile(`(?i)^mercury[-\s_]?atlas[-\s_]?(\d+)()$`),
		},
		{
			// "Soyuz 31/29" names a launch/landing pair; only the first flight counts.
			tag:     FamilySoyuz,
			request: regexp.MustCompile(`(?i)^soyuz[\s-]?(\d+)()(?:/\d+)?$`),
			title:   regexp.MustCompile(`(?i)^soyuz[-\s_]?(\d+)()$`),
		},
		programFamily(FamilyVostok, "vostok"),
		programFamily(FamilyVoskhod, "voskhod"),
		programFamily(FamilyShenzhou, "shenzhou"),
	}
}

// Matcher decides whether an article title plausibly denotes a requested
// mission. It is safe for concurrent use.
type Matcher struct {
	families []family
}

// NewMatcher builds a Matcher with the built-in family rules.
func NewMatcher() *Matcher {
	return &Matcher{families: defaultFamilies()}
}

// Rules returns the family rules the requested mission normalizes to, in
// priority order. Missions outside every known family yield no rules.
func (m *Matcher) Rules(requested string) []Rule {
	requested = strings.TrimSpace(requested)
	var rules []Rule
	for _, fam := range m.families {
		groups := fam.request.FindStringSubmatch(requested)
		if groups == nil {
			continue
		}
		rules = append(rules, Rule{Family: fam.tag, Number: groups[1], Suffix: groups[2]})
	}
	return rules
}

// Matches reports whether title satisfies any family rule derived from
// requested, or equals requested case-insensitively. Family rules are
// anchored at both ends, so "STS-51-L" never matches "STS-51".
func (m *Matcher) Matches(title, requested string) bool {
	title = strings.TrimSpace(title)
	requested = strings.TrimSpace(requested)
	for _, rule := range m.Rules(requested) {
		if m.matchRule(rule, title) {
			return true
		}
	}
	return strings.EqualFold(title, requested)
}

func (m *Matcher) matchRule(rule Rule, title string) bool {
	for _, fam := range m.families {
		if fam.tag != rule.Family {
			continue
		}
		groups := fam.title.FindStringSubmatch(title)
		if groups == nil {
			return false
		}
		return groups[1] == rule.Number && strings.EqualFold(groups[2], rule.Suffix)
	}
	return false
}
