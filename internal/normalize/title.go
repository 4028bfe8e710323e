package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/validate"
)

var (
	dailyBriefRe = regexp.MustCompile(`(?i)\bdaily[\s_-]*brief\b`)
	dailyRe      = regexp.MustCompile(`(?i)\bdaily\b`)
	// forbiddenRe matches the phrase anywhere, even inside longer words
	forbiddenRe = regexp.MustCompile(`(?i)daily\s+brief`)
)

// fillerWords pad short titles; the word appended at position p is fillerWords[p % len]
var fillerWords = []string{"Procurement", "Market", "Supplier", "Cost", "Risk", "Outlook", "Signals", "Update"}

// neutralPhrase replaces the forbidden phrase if it survives the rewrite
const neutralPhrase = "market update"

// repairTitle strips the forbidden phrase and the word "daily", pads to the minimum
// word count and truncates to the maximum
func repairTitle(out *model.StructuredOutput, r *Repairs) {
	title := NormalizeTitle(out.Title)
	if title != out.Title {
		r.add(RepairTitle, "%q -> %q", out.Title, title)
		out.Title = title
	}
}

// NormalizeTitle returns the repaired form of title
func NormalizeTitle(title string) string {
	t := dailyBriefRe.ReplaceAllString(title, " ")
	t = dailyRe.ReplaceAllString(t, " ")

	var words []string
	for _, w := range strings.Fields(t) {
		// Separators left behind by the removal, such as a lone ":" or "-"
		if strings.TrimFunc(w, unicode.IsPunct) == "" {
			continue
		}
		words = append(words, w)
	}
	for attempt := 0; len(words) < model.TitleMinWords && attempt < maxRepairIterations; attempt++ {
		words = append(words, fillerWords[len(words)%len(fillerWords)])
	}
	if len(words) > model.TitleMaxWords {
		words = words[:model.TitleMaxWords]
	}

	t = strings.Join(words, " ")
	if validate.ContainsForbiddenPhrase(t) {
		t = forbiddenRe.ReplaceAllString(t, neutralPhrase)
	}
	return t
}
