package extract

import (
	"strings"
	"unicode/utf8"
)

// Sentence is a span of source content
type Sentence struct {
	Text  string
	Start int // Byte offset into the original content
}

// minSentenceRunes drops fragments such as list markers and stray headings
const minSentenceRunes = 12

// SplitSentences splits content into sentences (simple heuristic), keeping byte
// offsets so excerpts can be located in the original text
func SplitSentences(content string) []Sentence {
	var sentences []Sentence

	start := 0
	flush := func(end int) {
		raw := content[start:end]
		trimmed := strings.TrimSpace(raw)
		if utf8.RuneCountInString(trimmed) >= minSentenceRunes {
			offset := start + strings.Index(raw, trimmed)
			sentences = append(sentences, Sentence{Text: trimmed, Start: offset})
		}
		start = end
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '\n' && i+1 < len(content) && content[i+1] == '\n':
			// Paragraph break
			flush(i)
		case c == '.' || c == '!' || c == '?':
			// Only split when followed by whitespace to avoid decimals and abbreviations like "U.S"
			if i+1 < len(content) && isSpace(content[i+1]) && !isAbbreviation(content[start:i+1]) {
				flush(i + 1)
			}
		}
	}
	if start < len(content) {
		flush(len(content))
	}

	return sentences
}

// Windows returns every sentence followed by every adjacent sentence pair, the
// candidate excerpts evidence matching searches over. Pairs are sliced from content
// so they stay verbatim.
func Windows(content string, sentences []Sentence) []Sentence {
	out := make([]Sentence, 0, len(sentences)*2)
	out = append(out, sentences...)
	for i := 0; i+1 < len(sentences); i++ {
		first, second := sentences[i], sentences[i+1]
		end := second.Start + len(second.Text)
		if first.Start < 0 || end > len(content) || first.Start >= end {
			continue
		}
		out = append(out, Sentence{Text: content[first.Start:end], Start: first.Start})
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

var abbreviations = []string{"e.g.", "i.e.", "inc.", "corp.", "co.", "ltd.", "vs.", "no.", "mr.", "ms.", "dr.", "st.", "approx.", "u.s.", "u.k.", "e.u.", "u.n."}

// isAbbreviation reports whether the span ends in a common abbreviation
func isAbbreviation(span string) bool {
	lower := strings.ToLower(span)
	for _, a := range abbreviations {
		if strings.HasSuffix(lower, " "+a) || lower == a || strings.HasSuffix(lower, "("+a) {
			return true
		}
	}
	return false
}
