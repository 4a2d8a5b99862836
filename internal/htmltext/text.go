// Package htmltext flattens parsed HTML into display text.
package htmltext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	bracketedRe   = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Text joins the non-blank text nodes under the selection with single
// spaces, trimming each node. Script and style bodies are skipped.
func Text(sel *goquery.Selection) string {
	var parts []string
	for _, n := range sel.Nodes {
		collect(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collect(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, parts)
	}
}

// Clean strips bracketed citation markers such as "[1]" or "[citation needed]",
// collapses whitespace runs (including non-breaking spaces) and trims.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = bracketedRe.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
