package brickset

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/figdex/figdex/internal/match"
)

// Each minifig on a listing page sits in its own <article class='set'> block.
// Extraction stays DOM-free on purpose: the page structure has been stable
// for years and a regex pass keeps the scraper dependency-free.
var (
	articleBlock = regexp.MustCompile(`(?i)<article[^>]*>[\s\S]*?</article>`)

	// Id from the meta header span ("<span>SW0282: </span>"), falling back to
	// any bare BrickLink-shaped id in the block.
	idMeta = regexp.MustCompile(`(?i)<span>(sw\d{4}[a-z]?):\s*</span>`)
	idBare = regexp.MustCompile(`(?i)\b(sw\d{4}[a-z]?)\b`)

	nameMeta  = regexp.MustCompile(`(?i)<div class='meta'>[\s\S]*?<h1><a[^>]*><span>[^<]*</span>\s*([^<]+)</a></h1>`)
	namePlain = regexp.MustCompile(`(?i)<h1><a[^>]*>([^<]+)</a></h1>`)

	valueNew  = regexp.MustCompile(`(?i)<dt>Value new</dt>\s*<dd><a[^>]*>~?\$?([\d,]+\.?\d*)</a></dd>`)
	valueUsed = regexp.MustCompile(`(?i)<dt>Value used</dt>\s*<dd><a[^>]*>~?\$?([\d,]+\.?\d*)</a></dd>`)
)

// ParseListing extracts all minifig records from one listing page. Blocks
// with neither an id nor a name are dropped; missing prices stay nil.
func ParseListing(html string) []match.Record {
	var records []match.Record
	for _, block := range articleBlock.FindAllString(html, -1) {
		id := firstCapture(block, idMeta, idBare)
		if id == "" {
			continue
		}

		name := strings.TrimSpace(firstCapture(block, nameMeta, namePlain))

		rec := match.Record{
			BricklinkID: strings.ToLower(id),
			Name:        name,
			ValueNew:    parsePrice(block, valueNew),
			ValueUsed:   parsePrice(block, valueUsed),
		}
		if rec.Name != "" || rec.BricklinkID != "" {
			records = append(records, rec)
		}
	}
	return records
}

func firstCapture(s string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

func parsePrice(block string, p *regexp.Regexp) *float64 {
	m := p.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}
