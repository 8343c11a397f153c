package catalog

import (
	"regexp"
	"strings"
)

// DefaultFaction is assigned when no rule matches.
const DefaultFaction = "Other"

// factionRule maps a keyword pattern to a faction tag. Rules are evaluated
// top to bottom against the lowercased name; the first match wins. Order
// encodes priority: faction-specific uniforms come before the generic
// "rebel" keywords, so reordering changes classification results.
type factionRule struct {
	pattern *regexp.Regexp
	tag     string
}

var factionRules = []factionRule{
	{regexp.MustCompile(`\b(clone|captain rex|commander (cody|wolffe|bly|gree|fox)|arc trooper|phase)\b`), "Clone"},
	{regexp.MustCompile(`\b(stormtrooper|death trooper|scout trooper|snowtrooper|sandtrooper|imperial|tarkin|moff|at-at driver|tie pilot|officer)\b`), "Empire"},
	{regexp.MustCompile(`\b(first order|captain phasma|kylo|hux|praetorian)\b`), "First Order"},
	{regexp.MustCompile(`\b(rebel|mon mothma|admiral ackbar|leia.*hoth|rebel pilot|a-wing|x-wing pilot|y-wing pilot|b-wing pilot)\b`), "Rebel Alliance"},
	{regexp.MustCompile(`\b(resistance|finn|poe|rose tico)\b`), "Resistance"},
	{regexp.MustCompile(`\b(jedi|luke|obi-wan|anakin|yoda|mace windu|ahsoka|qui-gon|kit fisto|plo koon|aayla|luminara|youngling)\b`), "Jedi"},
	{regexp.MustCompile(`\b(sith|darth|palpatine|emperor|dooku|maul|ventress|inquisitor|savage)\b`), "Sith"},
	{regexp.MustCompile(`\b(mandalorian|boba fett|jango|bo-katan|din djarin|mando|sabine|pre vizsla)\b`), "Mandalorian"},
	{regexp.MustCompile(`\b(bounty|greedo|bossk|dengar|ig-88|4-lom|zuckuss|embo|cad bane|aurra)\b`), "Bounty Hunter"},
	{regexp.MustCompile(`\b(droid|r2|c-3po|bb-8|gonk|battle droid|super battle|commando droid|ig-\d|chopper|k-2so)\b`), "Droid"},
	{regexp.MustCompile(`\b(wookiee|chewbacca|tarfful)\b`), "Wookiee"},
	{regexp.MustCompile(`\b(ewok|wicket)\b`), "Ewok"},
	{regexp.MustCompile(`\b(tusken|jawa|hutt|jabba|gamorrean|twilek|rodian|gungan|jar jar)\b`), "Civilian"},
	{regexp.MustCompile(`\b(han solo|lando|padm|bail)\b`), "Rebel Alliance"},
}

// ClassifyFaction guesses the faction tag from a minifig name. Computed once
// at catalog build; never recomputed automatically.
func ClassifyFaction(name string) string {
	n := strings.ToLower(name)
	for _, r := range factionRules {
		if r.pattern.MatchString(n) {
			return r.tag
		}
	}
	return DefaultFaction
}
