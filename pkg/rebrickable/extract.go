package rebrickable

import (
	"regexp"
	"strings"
)

// bricklinkIDPatterns is the ordered extraction cascade for pulling a
// BrickLink id out of a minifig detail page. Most specific first: explicit
// catalog links, then labelled text, then loose heuristics over the
// "External IDs" section. The first pattern with a capture wins, so order
// affects correctness on ambiguous pages.
var bricklinkIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bricklink\.com/v2/catalog/catalogitem\.page\?M=([a-z0-9]+)`),
	regexp.MustCompile(`(?i)bricklink\.com[^"]*[?&]M=([a-z0-9]+)`),
	regexp.MustCompile(`(?i)BrickLink[:\s]+<[^>]*>([a-z]{2,3}\d{3,5}[a-z]?)<`),
	regexp.MustCompile(`(?i)BrickLink[:\s]*([a-z]{2,3}\d{3,5}[a-z]?)`),
	regexp.MustCompile(`(?i)data-bricklink-id="([^"]+)"`),
	regexp.MustCompile(`(?i)External IDs[\s\S]{0,500}?BrickLink[\s\S]{0,200}?([a-z]{2,}\d{2,}[a-z]?)`),
}

// ExtractBricklinkID scans a detail page for the embedded BrickLink id.
// Returns the lowercased id and whether one was found.
func ExtractBricklinkID(html string) (string, bool) {
	for _, p := range bricklinkIDPatterns {
		if m := p.FindStringSubmatch(html); m != nil {
			return strings.ToLower(m[1]), true
		}
	}
	return "", false
}
