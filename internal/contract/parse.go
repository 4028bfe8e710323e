package contract

import (
	"regexp"
	"strings"
)

// fencedBlockRe matches a JSON object inside a markdown code fence: ```json { ... } ```
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\n?\\s*(\\{.*\\})\\s*```")

// ExtractPayload pulls the JSON object out of raw model output. It prefers a fenced
// code block, falls back to the outermost {...} span, and removes trailing commas
// before } or ]. It returns "" when no object is present.
func ExtractPayload(raw string) string {
	var payload string
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		payload = m[1]
	} else {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return ""
		}
		payload = raw[start : end+1]
	}
	return stripTrailingCommas(payload)
}

// stripTrailingCommas drops commas that directly precede a closing bracket,
// leaving string contents untouched
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
