package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Units recognized after a magnitude. Matching is exact (word-bounded) so ordinary
// words are never mistaken for units.
var numericUnits = []string{
	// scale words
	"million", "billion", "trillion", "thousand", "mn", "bn", "tn",
	// share
	"percent", "pct", "basis points", "bps",
	// energy and commodities
	"barrels", "barrel", "bbl", "bpd", "mbpd", "boe",
	"tons", "ton", "tonnes", "tonne", "mt", "mmt", "kt",
	"megawatts", "megawatt", "mw", "gigawatts", "gigawatt", "gw",
	"mwh", "gwh", "twh", "kwh",
	"mmbtu", "btu", "bcf", "tcf", "mcf", "bcm",
	"ounces", "oz", "pounds", "lbs", "kg", "kilograms",
	"teu", "feu", "dwt",
	"gallons", "gal", "liters", "litres",
	"days", "weeks", "months", "years",
}

var (
	quarterRe  = regexp.MustCompile(`(?i)\bq[1-4]\s+(?:19|20)\d{2}\b`)
	currencyRe = regexp.MustCompile(`(?i)(?:[$€£¥]|\b(?:usd|eur|gbp|cny|jpy)\s?)\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|trillion|thousand|mn|bn|tn|[mkb])\b)?`)
	percentRe  = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:%|percent\b|pct\b)`)
	unitRe     = regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:` + unitAlternation() + `)\b`)
	bareRe     = regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+|\d{2,})(?:\.\d+)?\b`)
)

func unitAlternation() string {
	// Longest first so "mwh" wins over "mw"
	units := append([]string{}, numericUnits...)
	sort.SliceStable(units, func(i, j int) bool { return len(units[i]) > len(units[j]) })
	for i, u := range units {
		units[i] = regexp.QuoteMeta(u)
	}
	return strings.Join(units, "|")
}

// NumericTokens extracts normalized numeric, monetary and unit tokens from text.
// Patterns run from most to least specific; a match overlapping an earlier one is
// skipped so "15%" does not also yield "15". The result is deduplicated and sorted.
func NumericTokens(text string) []string {
	seen := make(map[string]struct{})
	var covered [][2]int
	for _, re := range []*regexp.Regexp{quarterRe, currencyRe, percentRe, unitRe, bareRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if overlaps(covered, loc[0], loc[1]) {
				continue
			}
			covered = append(covered, [2]int{loc[0], loc[1]})
			tok := NormalizeNumeric(text[loc[0]:loc[1]])
			if tok == "" {
				continue
			}
			seen[tok] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

// HasNumeric reports whether text contains any numeric token
func HasNumeric(text string) bool {
	return len(NumericTokens(text)) > 0
}

// NormalizeNumeric lowercases, drops thousands separators and collapses whitespace.
// The same normalization is applied to source content before substring checks.
func NormalizeNumeric(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ",", "")
	return strings.Join(strings.Fields(s), " ")
}
