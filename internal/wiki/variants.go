package wiki

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// titleVariants lists the literal titles tried by direct lookup, in order,
// without duplicates.
func titleVariants(mission string) []string {
	variants := []string{mission, strings.ReplaceAll(mission, " ", "_")}

	if strings.Contains(mission, "/") {
		first := strings.TrimSpace(strings.SplitN(mission, "/", 2)[0])
		variants = append(variants,
			strings.ReplaceAll(mission, "/", " "),
			strings.ReplaceAll(mission, "/", "_"),
			first,
		)
	}

	upper := strings.ToUpper(mission)
	if strings.HasPrefix(upper, "MA-") {
		if n := nonDigits.ReplaceAllString(mission, ""); n != "" {
			variants = append(variants, "Mercury-Atlas "+n, "Mercury-Atlas_"+n)
		}
	}
	if strings.HasPrefix(upper, "STS") {
		if n := nonDigits.ReplaceAllString(mission, ""); n != "" {
			variants = append(variants, "STS "+n, "STS-"+n, "STS_"+n)
		}
	}

	return dedupe(variants)
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// articleURL joins base with the percent-encoded title. Unreserved characters
// and "/" are kept literally.
func articleURL(base, title string) string {
	return base + quoteTitle(title)
}

func quoteTitle(title string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(title))
	for i := 0; i < len(title); i++ {
		c := title[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '~', '/':
		return true
	}
	return false
}
