package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// TagKind classifies the trailing evidence marker of a text span
type TagKind string

const (
	TagNone     TagKind = "none"     // No recognized marker
	TagSource   TagKind = "source"   // Cites a numbered source
	TagAnalysis TagKind = "analysis" // Explicitly analytical, no citation required
)

// Tag is the parsed trailing marker of a claim
type Tag struct {
	Kind  TagKind
	Index int // 1-based source index, only set for TagSource
}

// Markers are anchored at the end of the text. The article vocabulary accepts
// "(source: N)" and "(source: articleIndex N)"; the candidate vocabulary only
// accepts "(source: candidateIndex N)". Neither matches the other's marker.
var (
	articleTagRe   = regexp.MustCompile(`(?i)\s*\(\s*source\s*:\s*(?:articleindex\s*)?(\d+)\s*\)\s*$`)
	candidateTagRe = regexp.MustCompile(`(?i)\s*\(\s*source\s*:\s*candidateindex\s*(\d+)\s*\)\s*$`)
	analysisTagRe  = regexp.MustCompile(`(?i)\s*\(\s*analysis\s*\)\s*$`)
)

// ParseTag classifies the trailing article marker of text
func ParseTag(text string) Tag {
	if analysisTagRe.MatchString(text) {
		return Tag{Kind: TagAnalysis}
	}
	if n, ok := matchIndex(articleTagRe, text); ok {
		return Tag{Kind: TagSource, Index: n}
	}
	return Tag{Kind: TagNone}
}

// ParseCandidateTag classifies the trailing candidate marker of text
func ParseCandidateTag(text string) Tag {
	if n, ok := matchIndex(candidateTagRe, text); ok {
		return Tag{Kind: TagSource, Index: n}
	}
	return Tag{Kind: TagNone}
}

// StripTag removes a recognized article or analysis marker and collapses whitespace
func StripTag(text string) string {
	if analysisTagRe.MatchString(text) {
		return collapse(analysisTagRe.ReplaceAllString(text, ""))
	}
	if _, ok := matchIndex(articleTagRe, text); ok {
		return collapse(articleTagRe.ReplaceAllString(text, ""))
	}
	return collapse(text)
}

// StripCandidateTag removes a recognized candidate marker and collapses whitespace
func StripCandidateTag(text string) string {
	if _, ok := matchIndex(candidateTagRe, text); ok {
		return collapse(candidateTagRe.ReplaceAllString(text, ""))
	}
	return collapse(text)
}

// matchIndex returns the positive integer captured by re at the end of text
func matchIndex(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
