package score

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped before similarity scoring
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {},
	"all": {}, "any": {}, "can": {}, "had": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "have": {}, "his": {}, "how": {}, "its": {},
	"may": {}, "who": {}, "did": {}, "get": {}, "him": {}, "she": {}, "too": {},
	"use": {}, "that": {}, "with": {}, "this": {}, "from": {}, "they": {}, "will": {},
	"been": {}, "were": {}, "into": {}, "than": {}, "their": {}, "there": {}, "which": {},
	"also": {}, "more": {}, "over": {}, "such": {},
}

// Tokenize lowercases text and returns alphanumeric tokens longer than two
// characters, minus stopwords
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFKC.String(text))

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) <= 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TermFrequencies counts tokens of a text span
func TermFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, tok := range Tokenize(text) {
		tf[tok]++
	}
	return tf
}

// Similarity returns the cosine similarity of the term-frequency vectors of a and b.
// It is 0 when either span has no tokens.
func Similarity(a, b string) float64 {
	return Cosine(TermFrequencies(a), TermFrequencies(b))
}

// Cosine computes dot(a,b) / (|a|*|b|) over sparse term-frequency maps
func Cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Iterate the smaller map for the dot product
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	var dot float64
	for tok, n := range small {
		if m, ok := large[tok]; ok {
			dot += float64(n * m)
		}
	}
	if dot == 0 {
		return 0
	}

	return dot / (norm2(a) * norm2(b))
}

func norm2(v map[string]int) float64 {
	var sum float64
	for _, n := range v {
		sum += float64(n * n)
	}
	return math.Sqrt(sum)
}
